package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
)

// fakeExecer records stage invocations and fails the configured stages.
type fakeExecer struct {
	calls []string
	env   map[string]map[string]string
	fail  map[string]int // stage name → exit code
}

func (f *fakeExecer) Exec(ctx context.Context, stage Stage, env map[string]string) (int, error) {
	f.calls = append(f.calls, stage.Name)
	if f.env == nil {
		f.env = map[string]map[string]string{}
	}
	f.env[stage.Name] = env
	if code, ok := f.fail[stage.Name]; ok {
		return code, fmt.Errorf("stage %s exited %d", stage.Name, code)
	}
	return 0, nil
}

func testRunner(exec Execer) *Runner {
	return &Runner{Exec: exec, Stderr: io.Discard}
}

func fourStages(bestEffortSecond bool) []Stage {
	return []Stage{
		{Name: "one", Command: []string{"true"}},
		{Name: "two", Command: []string{"true"}, BestEffort: bestEffortSecond},
		{Name: "three", Command: []string{"true"}},
		{Name: "four", Command: []string{"true"}},
	}
}

func TestRunAllSuccess(t *testing.T) {
	exec := &fakeExecer{}
	res, err := testRunner(exec).Run(context.Background(), fourStages(false), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.OK() {
		t.Error("OK() = false")
	}
	if len(exec.calls) != 4 {
		t.Errorf("calls = %v", exec.calls)
	}
	for _, s := range res.Stages {
		if s.Status != StatusSuccess {
			t.Errorf("stage %s status = %s", s.Name, s.Status)
		}
	}
}

// A non-best-effort failure at stage 2 of 4 means stages 3 and 4 never run.
func TestRunHaltsOnFatalFailure(t *testing.T) {
	exec := &fakeExecer{fail: map[string]int{"two": 7}}
	res, err := testRunner(exec).Run(context.Background(), fourStages(false), nil)

	if err == nil {
		t.Fatal("expected error")
	}
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("error type %T", err)
	}
	if stageErr.Stage != "two" || stageErr.ExitCode != 7 {
		t.Errorf("StageError = %+v", stageErr)
	}

	if len(exec.calls) != 2 {
		t.Errorf("executed %v, want stages one and two only", exec.calls)
	}
	if res.Stages[2].Status != StatusSkipped || res.Stages[3].Status != StatusSkipped {
		t.Errorf("later stages not skipped: %+v", res.Stages)
	}
	if res.OK() {
		t.Error("OK() = true after fatal failure")
	}
	if got := res.FirstFailure(); got == nil || got.Name != "two" {
		t.Errorf("FirstFailure = %+v", got)
	}
}

// A best-effort failure at stage 2 of 4 is recorded but stages 3 and 4 run.
func TestRunContinuesPastBestEffortFailure(t *testing.T) {
	exec := &fakeExecer{fail: map[string]int{"two": 1}}
	res, err := testRunner(exec).Run(context.Background(), fourStages(true), nil)

	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(exec.calls) != 4 {
		t.Errorf("executed %v, want all four stages", exec.calls)
	}
	if res.Stages[1].Status != StatusBestEffort {
		t.Errorf("stage two status = %s", res.Stages[1].Status)
	}
	if res.Stages[1].ExitCode != 1 {
		t.Errorf("stage two exit = %d", res.Stages[1].ExitCode)
	}
	if !res.OK() {
		t.Error("OK() = false, best-effort failure must not fail the run")
	}
}

// No stage is ever invoked more than once — no automatic retry.
func TestRunNeverRetries(t *testing.T) {
	exec := &fakeExecer{fail: map[string]int{"one": 1}}
	_, _ = testRunner(exec).Run(context.Background(), fourStages(false), nil)

	seen := map[string]int{}
	for _, c := range exec.calls {
		seen[c]++
	}
	for name, n := range seen {
		if n != 1 {
			t.Errorf("stage %s invoked %d times", name, n)
		}
	}
}

func TestRunEnvMerging(t *testing.T) {
	stages := []Stage{{
		Name:    "build",
		Command: []string{"true"},
		Env:     map[string]string{"STAGE_VAR": "s", "SHARED": "stage"},
	}}
	exec := &fakeExecer{}
	_, err := testRunner(exec).Run(context.Background(), stages, map[string]string{
		"SLIPWAY_TOOL_VERSION": "3.11",
		"SHARED":               "cell",
	})
	if err != nil {
		t.Fatal(err)
	}

	env := exec.env["build"]
	if env["SLIPWAY_TOOL_VERSION"] != "3.11" {
		t.Errorf("cell env not bound: %v", env)
	}
	if env["STAGE_VAR"] != "s" {
		t.Errorf("stage env missing: %v", env)
	}
	// Stage env wins over cell env.
	if env["SHARED"] != "stage" {
		t.Errorf("SHARED = %q, want stage", env["SHARED"])
	}
}
