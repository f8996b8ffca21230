package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Project holds package metadata read from pyproject.toml.
type Project struct {
	Name    string
	Version string
}

type pyproject struct {
	Project struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"project"`
}

// LoadProject reads [project] metadata from rootDir/pyproject.toml.
// Returns (nil, nil) when the file doesn't exist — older projects predate it.
func LoadProject(rootDir string) (*Project, error) {
	data, err := os.ReadFile(filepath.Join(rootDir, "pyproject.toml"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var pp pyproject
	if err := toml.Unmarshal(data, &pp); err != nil {
		return nil, fmt.Errorf("parsing pyproject.toml: %w", err)
	}
	if pp.Project.Name == "" {
		return nil, nil
	}
	return &Project{Name: pp.Project.Name, Version: pp.Project.Version}, nil
}

// Check cross-checks artifacts against project metadata and returns one
// message per mismatch. Name comparison is normalized the way index servers
// do it (case-insensitive, with ".", "-" and "_" equivalent).
func (p *Project) Check(artifacts []Artifact) []string {
	if p == nil {
		return nil
	}

	var problems []string
	want := normalizeName(p.Name)
	for _, a := range artifacts {
		if normalizeName(a.Name) != want {
			problems = append(problems, fmt.Sprintf("%s: package name %q does not match pyproject name %q", a.File, a.Name, p.Name))
		}
		if p.Version != "" && a.Version != p.Version {
			problems = append(problems, fmt.Sprintf("%s: version %q does not match pyproject version %q", a.File, a.Version, p.Version))
		}
	}
	return problems
}

func normalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", "_")
	return strings.ReplaceAll(name, ".", "_")
}
