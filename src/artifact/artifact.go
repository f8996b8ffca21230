// Package artifact discovers built distribution files in the dist
// directory. Ownership of artifacts passes from build stages to the
// publisher purely by convention of this shared directory.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Kind classifies a distribution file.
type Kind string

const (
	Sdist Kind = "sdist" // source distribution archive
	Wheel Kind = "wheel" // binary package archive
)

// Artifact is one distributable file found in the dist directory.
type Artifact struct {
	Path     string // absolute or dist-relative path on disk
	File     string // base filename
	Name     string // package name parsed from the filename
	Version  string // version parsed from the filename
	Kind     Kind
	Platform string // wheel platform tag, "" for sdists
}

// Collect scans distDir for sdists and wheels, sorted by filename.
// Files that don't parse as either kind are ignored.
func Collect(distDir string) ([]Artifact, error) {
	entries, err := os.ReadDir(distDir)
	if err != nil {
		return nil, fmt.Errorf("reading dist directory: %w", err)
	}

	var artifacts []Artifact
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		a, ok := parse(e.Name())
		if !ok {
			continue
		}
		a.Path = filepath.Join(distDir, e.Name())
		artifacts = append(artifacts, a)
	}

	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].File < artifacts[j].File })
	return artifacts, nil
}

func parse(name string) (Artifact, bool) {
	switch {
	case strings.HasSuffix(name, ".tar.gz"):
		return parseSdist(name)
	case strings.HasSuffix(name, ".whl"):
		return parseWheel(name)
	}
	return Artifact{}, false
}

// parseSdist handles "<name>-<version>.tar.gz". The version is the part
// after the last hyphen; package names may themselves contain hyphens.
func parseSdist(file string) (Artifact, bool) {
	base := strings.TrimSuffix(file, ".tar.gz")
	idx := strings.LastIndex(base, "-")
	if idx <= 0 || idx == len(base)-1 {
		return Artifact{}, false
	}
	return Artifact{
		File:    file,
		Name:    base[:idx],
		Version: base[idx+1:],
		Kind:    Sdist,
	}, true
}

// parseWheel handles "<name>-<version>(-<build>)?-<python>-<abi>-<platform>.whl".
// Wheel filenames normalize hyphens in the package name to underscores, so
// splitting on "-" is unambiguous.
func parseWheel(file string) (Artifact, bool) {
	base := strings.TrimSuffix(file, ".whl")
	parts := strings.Split(base, "-")
	if len(parts) < 5 {
		return Artifact{}, false
	}
	return Artifact{
		File:     file,
		Name:     parts[0],
		Version:  parts[1],
		Kind:     Wheel,
		Platform: parts[len(parts)-1],
	}, true
}
