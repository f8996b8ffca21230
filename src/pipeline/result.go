package pipeline

import "time"

// Stage outcome states.
const (
	StatusSuccess    = "success"
	StatusFailed     = "failed"
	StatusBestEffort = "best-effort" // failed, but marked best-effort
	StatusSkipped    = "skipped"     // never ran: an earlier stage was fatal
)

// StageResult captures the outcome of a single stage.
type StageResult struct {
	Name     string
	Status   string
	ExitCode int
	Duration time.Duration
	Err      error
}

// RunResult captures the outcome of a full stage sequence.
type RunResult struct {
	Stages   []StageResult
	Duration time.Duration
}

// OK reports whether every non-best-effort stage succeeded.
func (r *RunResult) OK() bool {
	for _, s := range r.Stages {
		if s.Status == StatusFailed {
			return false
		}
	}
	return true
}

// FirstFailure returns the fatal stage result, if any.
func (r *RunResult) FirstFailure() *StageResult {
	for i := range r.Stages {
		if r.Stages[i].Status == StatusFailed {
			return &r.Stages[i]
		}
	}
	return nil
}
