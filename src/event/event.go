// Package event models the version-control push events that start
// pipelines, and detects them from a local repository when slipway runs
// outside a webhook context.
package event

import "strings"

// Kind classifies a push event.
type Kind string

const (
	Push    Kind = "push" // branch push
	TagPush Kind = "tag"  // tag push
)

// Event is an immutable version-control push event.
type Event struct {
	// Ref is the short ref name: a branch name for pushes, a tag name
	// (e.g. "v1.2.3-rc1") for tag pushes.
	Ref  string `json:"ref"`
	Kind Kind   `json:"kind"`
}

// Normalize strips the full-ref prefixes hosts put on webhook payloads
// ("refs/tags/v1.0.0-rc1" → "v1.0.0-rc1") and infers the kind when the
// prefix makes it unambiguous.
func Normalize(ref string, kind Kind) Event {
	switch {
	case strings.HasPrefix(ref, "refs/tags/"):
		return Event{Ref: strings.TrimPrefix(ref, "refs/tags/"), Kind: TagPush}
	case strings.HasPrefix(ref, "refs/heads/"):
		return Event{Ref: strings.TrimPrefix(ref, "refs/heads/"), Kind: Push}
	}
	if kind == "" {
		kind = Push
	}
	return Event{Ref: ref, Kind: kind}
}
