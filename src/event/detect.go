package event

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Detect synthesizes an Event from the repository at rootDir.
// If HEAD sits exactly on a tag the event is a tag push for that tag;
// otherwise it is a branch push for the current branch.
func Detect(rootDir string) (Event, error) {
	repo, err := git.PlainOpen(rootDir)
	if err != nil {
		return Event{}, fmt.Errorf("opening repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return Event{}, fmt.Errorf("resolving HEAD: %w", err)
	}

	if tag, ok := tagAt(repo, head.Hash()); ok {
		return Event{Ref: tag, Kind: TagPush}, nil
	}

	ref := head.Name().Short()
	if !head.Name().IsBranch() {
		// Detached HEAD with no tag — use the short hash as the ref.
		ref = head.Hash().String()[:7]
	}
	return Event{Ref: ref, Kind: Push}, nil
}

// tagAt returns the name of a tag pointing at the given commit, if any.
// Annotated tags are peeled to their target commit first.
func tagAt(repo *git.Repository, commit plumbing.Hash) (string, bool) {
	iter, err := repo.Tags()
	if err != nil {
		return "", false
	}
	defer iter.Close()

	var found string
	_ = iter.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		if obj, tagErr := repo.TagObject(ref.Hash()); tagErr == nil {
			target = obj.Target
		}
		if target == commit {
			found = ref.Name().Short()
			return storer.ErrStop
		}
		return nil
	})

	return found, found != ""
}
