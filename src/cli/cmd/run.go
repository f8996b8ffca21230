package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/slipway-ci/slipway/src/artifact"
	"github.com/slipway-ci/slipway/src/event"
	"github.com/slipway-ci/slipway/src/matrix"
	"github.com/slipway-ci/slipway/src/output"
	"github.com/slipway-ci/slipway/src/pipeline"
	"github.com/slipway-ci/slipway/src/publish"
	"github.com/slipway-ci/slipway/src/summary"
	"github.com/slipway-ci/slipway/src/trigger"
	"github.com/spf13/cobra"
)

var (
	runRef      string
	runKind     string
	runPipeline string
	runNoPub    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate the trigger and run the selected pipelines",
	Long: `Evaluate the push event against the trigger policy and run every
selected pipeline: matrix cells in parallel, stages sequentially
per cell, publish targets after a fully green tag pipeline.

Without --ref the event is detected from the local repository
(tag push if HEAD sits exactly on a tag, branch push otherwise).`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runRef, "ref", "", "event ref (default: detected from git)")
	runCmd.Flags().StringVar(&runKind, "kind", "", "event kind: push or tag (default: inferred)")
	runCmd.Flags().StringVar(&runPipeline, "pipeline", "", "run only this pipeline")
	runCmd.Flags().BoolVar(&runNoPub, "skip-publish", false, "run stages but skip publish targets")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	ev, err := resolveEvent(rootDir)
	if err != nil {
		return err
	}

	plans := trigger.Evaluate(cfg, ev)
	plans = filterPlans(plans, runPipeline)

	ctx := context.Background()
	color := output.UseColor()
	w := os.Stdout

	if len(plans) == 0 {
		// Trigger mismatch is a valid no-op.
		fmt.Fprintf(w, "nothing to run for %s %q\n", ev.Kind, ev.Ref)
		return nil
	}

	runner := pipeline.NewRunner(verbose)
	start := time.Now()

	runSum := &summary.RunSummary{Ref: ev.Ref, Kind: string(ev.Kind), Time: start}
	var firstErr error

	for _, plan := range plans {
		planErr := runPlan(ctx, w, color, rootDir, runner, plan, runSum)
		if planErr != nil && firstErr == nil {
			firstErr = planErr
		}
	}

	runSum.Duration = time.Since(start)
	if err := summary.Write(rootDir, runSum); err != nil {
		fmt.Fprintf(os.Stderr, "warning: writing run summary: %v\n", err)
	}

	return firstErr
}

// runPlan executes one pipeline: matrix cells, then publish targets.
func runPlan(ctx context.Context, w *os.File, color bool, rootDir string, runner *pipeline.Runner, plan trigger.Plan, runSum *summary.RunSummary) error {
	cells := matrix.Expand(plan.Pipeline.Matrix)
	stages := pipeline.FromConfig(plan.Pipeline.Stages)

	start := time.Now()
	results := matrix.Run(ctx, runner, cells, stages, cfg.EffectiveParallelism())
	elapsed := time.Since(start)

	ps := summary.PipelineSummary{Name: plan.Name, Cells: len(cells), Status: "passing"}

	sectionID := "slipway_" + plan.Name
	output.SectionStart(w, sectionID, plan.Name)
	sec := output.NewSection(w, plan.Name, elapsed, color)
	for _, r := range results {
		renderCell(sec, color, r, &ps)
	}
	sec.Close()
	output.SectionEnd(w, sectionID)

	runErr := matrix.FirstError(results)
	if runErr != nil {
		var stageErr *pipeline.StageError
		if errors.As(runErr, &stageErr) {
			ps.ExitCode = stageErr.ExitCode
		}
		ps.Status = "failing"
	}

	// Publish only after a fully green run: a failed cell must not ship
	// whatever artifacts the other cells produced.
	if runErr == nil && !runNoPub && len(plan.Pipeline.Publish) > 0 {
		if err := runPublish(ctx, w, color, rootDir, plan); err != nil {
			ps.Status = "failing"
			runSum.Pipelines = append(runSum.Pipelines, ps)
			return err
		}
	}

	runSum.Pipelines = append(runSum.Pipelines, ps)
	return runErr
}

func renderCell(sec *output.Section, color bool, r matrix.CellResult, ps *summary.PipelineSummary) {
	status := "success"
	if r.Err != nil {
		status = "failed"
		ps.Failed++
	}
	sec.Row("%-20s %s", r.Cell, output.StatusIcon(status, color))

	if r.Result == nil {
		return
	}
	for _, sr := range r.Result.Stages {
		switch sr.Status {
		case pipeline.StatusFailed:
			sec.Row("  %-18s %s  exit %d", sr.Name, output.StatusIcon("failed", color), sr.ExitCode)
		case pipeline.StatusBestEffort:
			sec.Row("  %-18s %s  best-effort failure, continued", sr.Name, output.StatusIcon("skipped", color))
			if ps.Status == "passing" {
				ps.Status = "partial"
			}
		case pipeline.StatusSkipped:
			sec.Row("  %-18s %s", sr.Name, output.Dimmed("skipped", color))
		default:
			sec.Row("  %-18s %s  %s", sr.Name, output.StatusIcon("success", color), sr.Duration.Round(time.Millisecond))
		}
	}
}

// runPublish uploads the dist directory to every target of the plan.
func runPublish(ctx context.Context, w *os.File, color bool, rootDir string, plan trigger.Plan) error {
	artifacts, err := artifact.Collect(cfg.Dist)
	if err != nil {
		return fmt.Errorf("collecting artifacts: %w", err)
	}
	if len(artifacts) == 0 {
		return fmt.Errorf("no artifacts in %s to publish", cfg.Dist)
	}

	if proj, err := artifact.LoadProject(rootDir); err == nil {
		for _, problem := range proj.Check(artifacts) {
			fmt.Fprintf(os.Stderr, "warning: %s\n", problem)
		}
	}

	pub := publish.NewPublisher(verbose)

	start := time.Now()
	output.SectionStart(w, "slipway_publish", "Publish")
	sec := output.NewSection(w, "Publish", 0, color)
	defer func() {
		sec.Separator()
		sec.Row("%-20s %s", "total", time.Since(start).Round(time.Millisecond))
		sec.Close()
		output.SectionEnd(w, "slipway_publish")
	}()

	for _, t := range plan.Pipeline.Publish {
		target := publish.Target{IndexURL: t.IndexURL, Credentials: t.Credentials}
		results, err := pub.Publish(ctx, target, artifacts)
		for _, r := range results {
			status := "success"
			if !r.OK {
				status = "failed"
			}
			sec.Row("%-40s %s  %s", r.Artifact, output.StatusIcon(status, color), target.IndexURL)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func resolveEvent(rootDir string) (event.Event, error) {
	if runRef != "" {
		return event.Normalize(runRef, event.Kind(runKind)), nil
	}
	ev, err := event.Detect(rootDir)
	if err != nil {
		return event.Event{}, fmt.Errorf("detecting event from repository (use --ref): %w", err)
	}
	return ev, nil
}

func filterPlans(plans []trigger.Plan, only string) []trigger.Plan {
	if only == "" {
		return plans
	}
	var out []trigger.Plan
	for _, p := range plans {
		if p.Name == only {
			out = append(out, p)
		}
	}
	return out
}
