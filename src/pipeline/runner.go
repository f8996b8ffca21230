package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Execer runs one stage command and returns its exit code.
// It exists so run semantics are testable without spawning processes.
type Execer interface {
	Exec(ctx context.Context, stage Stage, env map[string]string) (int, error)
}

// Runner executes stage sequences.
type Runner struct {
	Exec    Execer
	Verbose bool
	Stderr  io.Writer
}

// NewRunner creates a runner backed by real subprocess execution.
func NewRunner(verbose bool) *Runner {
	return &Runner{
		Exec:    &CommandExecer{Stdout: os.Stdout, Stderr: os.Stderr},
		Verbose: verbose,
		Stderr:  os.Stderr,
	}
}

// Run executes stages in order with env bound to every command.
// The first non-best-effort failure halts the sequence: later stages are
// marked skipped and a *StageError is returned alongside the result.
// Best-effort failures are recorded and logged but do not halt.
// No stage is ever retried.
func (r *Runner) Run(ctx context.Context, stages []Stage, env map[string]string) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{Stages: make([]StageResult, 0, len(stages))}

	var fatal *StageError

	for _, stage := range stages {
		if fatal != nil {
			result.Stages = append(result.Stages, StageResult{Name: stage.Name, Status: StatusSkipped})
			continue
		}

		sr := r.runStage(ctx, stage, env)
		result.Stages = append(result.Stages, sr)

		if sr.Status == StatusFailed {
			fatal = &StageError{Stage: stage.Name, ExitCode: sr.ExitCode, Err: sr.Err}
		}
	}

	result.Duration = time.Since(start)
	if fatal != nil {
		return result, fatal
	}
	return result, nil
}

func (r *Runner) runStage(ctx context.Context, stage Stage, env map[string]string) StageResult {
	start := time.Now()

	merged := make(map[string]string, len(env)+len(stage.Env))
	for k, v := range env {
		merged[k] = v
	}
	for k, v := range stage.Env {
		merged[k] = v
	}

	if r.Verbose {
		fmt.Fprintf(r.stderr(), "exec: %s\n", strings.Join(stage.Command, " "))
	}

	code, err := r.Exec.Exec(ctx, stage, merged)
	sr := StageResult{
		Name:     stage.Name,
		ExitCode: code,
		Duration: time.Since(start),
		Err:      err,
	}

	switch {
	case err == nil && code == 0:
		sr.Status = StatusSuccess
	case stage.BestEffort:
		sr.Status = StatusBestEffort
		fmt.Fprintf(r.stderr(), "warning: best-effort stage %q failed (exit %d), continuing\n", stage.Name, code)
	default:
		sr.Status = StatusFailed
	}

	return sr
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

// CommandExecer runs stages as real subprocesses via exec.CommandContext.
type CommandExecer struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Exec runs the stage command with env appended to the current environment.
func (c *CommandExecer) Exec(ctx context.Context, stage Stage, env map[string]string) (int, error) {
	cmd := exec.CommandContext(ctx, stage.Command[0], stage.Command[1:]...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if stage.WorkDir != "" {
		cmd.Dir = stage.WorkDir
	}
	if len(env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), fmt.Errorf("command %q: %w", stage.Command[0], err)
	}
	// Start failure (command not found etc.) — no exit status to propagate.
	return -1, fmt.Errorf("starting %q: %w", stage.Command[0], err)
}
