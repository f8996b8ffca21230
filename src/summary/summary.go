// Package summary persists the outcome of the last run so later commands
// (badge generation, status queries) can read it without re-running.
package summary

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const (
	dir  = ".slipway"
	file = "last-run.json"
)

// PipelineSummary is the recorded outcome of one pipeline.
type PipelineSummary struct {
	Name     string `json:"name"`
	Status   string `json:"status"` // passing, failing, partial
	Cells    int    `json:"cells"`
	Failed   int    `json:"failed"`
	ExitCode int    `json:"exit_code,omitempty"`
}

// RunSummary is the recorded outcome of one `slipway run`.
type RunSummary struct {
	Ref       string            `json:"ref"`
	Kind      string            `json:"kind"`
	Pipelines []PipelineSummary `json:"pipelines"`
	Duration  time.Duration     `json:"duration"`
	Time      time.Time         `json:"time"`
}

// Status collapses the per-pipeline statuses: failing if any pipeline
// failed, partial if any best-effort stage failed, passing otherwise.
func (r *RunSummary) Status() string {
	status := "passing"
	for _, p := range r.Pipelines {
		switch p.Status {
		case "failing":
			return "failing"
		case "partial":
			status = "partial"
		}
	}
	if len(r.Pipelines) == 0 {
		return "none"
	}
	return status
}

// Write stores the summary under rootDir/.slipway/last-run.json.
func Write(rootDir string, s *RunSummary) error {
	d := filepath.Join(rootDir, dir)
	if err := os.MkdirAll(d, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(d, file), data, 0o644)
}

// Load reads the last run summary, if one exists.
func Load(rootDir string) (*RunSummary, error) {
	data, err := os.ReadFile(filepath.Join(rootDir, dir, file))
	if err != nil {
		return nil, err
	}
	var s RunSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
