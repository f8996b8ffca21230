package cmd

import (
	"fmt"
	"os"

	"github.com/slipway-ci/slipway/src/event"
	"github.com/slipway-ci/slipway/src/matrix"
	"github.com/slipway-ci/slipway/src/output"
	"github.com/slipway-ci/slipway/src/trigger"
	"github.com/spf13/cobra"
)

var (
	planRef  string
	planKind string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what an event would run, without running it",
	RunE:  runPlanCmd,
}

func init() {
	planCmd.Flags().StringVar(&planRef, "ref", "", "event ref (default: detected from git)")
	planCmd.Flags().StringVar(&planKind, "kind", "", "event kind: push or tag (default: inferred)")

	rootCmd.AddCommand(planCmd)
}

func runPlanCmd(cmd *cobra.Command, args []string) error {
	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	var ev event.Event
	if planRef != "" {
		ev = event.Normalize(planRef, event.Kind(planKind))
	} else {
		ev, err = event.Detect(rootDir)
		if err != nil {
			return fmt.Errorf("detecting event from repository (use --ref): %w", err)
		}
	}

	plans := trigger.Evaluate(cfg, ev)
	color := output.UseColor()
	w := os.Stdout

	sec := output.NewSection(w, "Plan", 0, color)
	sec.Row("%-12s%s", "ref", ev.Ref)
	sec.Row("%-12s%s", "kind", ev.Kind)
	sec.Separator()

	if len(plans) == 0 {
		sec.Row("no pipelines selected")
		sec.Close()
		return nil
	}

	for _, p := range plans {
		cells := matrix.Expand(p.Pipeline.Matrix)
		sec.Row("%-12s%d cells, %d stages, %d publish targets",
			p.Name, len(cells), len(p.Pipeline.Stages), len(p.Pipeline.Publish))
		if verbose {
			for _, c := range cells {
				sec.Row("  %s", c)
			}
			for _, t := range p.Pipeline.Publish {
				sec.Row("  → %s (credentials from %s_TOKEN)", t.IndexURL, t.Credentials)
			}
		}
	}
	sec.Close()
	return nil
}
