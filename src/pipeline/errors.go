package pipeline

import "fmt"

// StageError is the fatal failure of a non-best-effort stage. ExitCode is
// the stage command's exit status, propagated unchanged to the process exit.
type StageError struct {
	Stage    string
	ExitCode int
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %q failed with exit code %d", e.Stage, e.ExitCode)
}

func (e *StageError) Unwrap() error { return e.Err }
