package summary

import (
	"testing"
	"time"
)

func TestStatusCollapse(t *testing.T) {
	tests := []struct {
		name string
		sum  RunSummary
		want string
	}{
		{"no pipelines", RunSummary{}, "none"},
		{"all passing", RunSummary{Pipelines: []PipelineSummary{{Status: "passing"}, {Status: "passing"}}}, "passing"},
		{"partial wins over passing", RunSummary{Pipelines: []PipelineSummary{{Status: "passing"}, {Status: "partial"}}}, "partial"},
		{"failing wins over partial", RunSummary{Pipelines: []PipelineSummary{{Status: "partial"}, {Status: "failing"}}}, "failing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sum.Status(); got != tt.want {
				t.Errorf("Status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	in := &RunSummary{
		Ref:  "v1.2.3-rc1",
		Kind: "tag",
		Pipelines: []PipelineSummary{
			{Name: "release", Status: "failing", Cells: 3, Failed: 1, ExitCode: 7},
		},
		Duration: 42 * time.Second,
		Time:     time.Now().UTC().Truncate(time.Second),
	}

	if err := Write(dir, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if out.Ref != in.Ref || out.Kind != in.Kind || out.Duration != in.Duration {
		t.Errorf("roundtrip mismatch: %+v", out)
	}
	if len(out.Pipelines) != 1 || out.Pipelines[0].ExitCode != 7 {
		t.Errorf("pipelines = %+v", out.Pipelines)
	}
	if out.Status() != "failing" {
		t.Errorf("Status = %q", out.Status())
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error when no summary exists")
	}
}
