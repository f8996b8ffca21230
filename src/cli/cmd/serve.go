package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slipway-ci/slipway/src/event"
	"github.com/slipway-ci/slipway/src/matrix"
	"github.com/slipway-ci/slipway/src/output"
	"github.com/slipway-ci/slipway/src/pipeline"
	"github.com/slipway-ci/slipway/src/server"
	"github.com/slipway-ci/slipway/src/trigger"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Listen for push events over HTTP and run pipelines",
	Long: `Start a webhook listener. POST /events with {"ref": ..., "kind": ...}
evaluates the trigger policy and runs the selected pipelines in
the background. Refs matching nothing answer 202 with an empty
pipeline list.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8420", "listen address")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &server.Server{
		Cfg: cfg,
		Run: serveRunFunc,
	}

	fmt.Fprintf(os.Stderr, "listening on %s\n", serveAddr)
	if err := srv.ListenAndServe(ctx, serveAddr); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// serveRunFunc executes pipelines for a webhook event. Publish targets are
// skipped in serve mode — the listener has no dist directory of its own.
func serveRunFunc(ctx context.Context, ev event.Event, plans []trigger.Plan) {
	runner := pipeline.NewRunner(verbose)
	color := output.UseColor()
	w := os.Stdout

	for _, plan := range plans {
		cells := matrix.Expand(plan.Pipeline.Matrix)
		stages := pipeline.FromConfig(plan.Pipeline.Stages)

		start := time.Now()
		results := matrix.Run(ctx, runner, cells, stages, cfg.EffectiveParallelism())
		elapsed := time.Since(start)

		sec := output.NewSection(w, fmt.Sprintf("%s (%s)", plan.Name, ev.Ref), elapsed, color)
		for _, r := range results {
			status := "success"
			if r.Err != nil {
				status = "failed"
			}
			sec.Row("%-20s %s", r.Cell, output.StatusIcon(status, color))
		}
		sec.Close()

		if err := matrix.FirstError(results); err != nil {
			fmt.Fprintf(os.Stderr, "pipeline %s for %s: %v\n", plan.Name, ev.Ref, err)
		}
	}
}
