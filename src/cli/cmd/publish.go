package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/slipway-ci/slipway/src/artifact"
	"github.com/slipway-ci/slipway/src/config"
	"github.com/slipway-ci/slipway/src/output"
	"github.com/slipway-ci/slipway/src/publish"
	"github.com/spf13/cobra"
)

var (
	pubDist        string
	pubIndexURL    string
	pubCredentials string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload dist artifacts to the configured package indexes",
	Long: `Upload every artifact in the dist directory to the publish targets
of the tag pipelines, or to an ad-hoc target given via flags.

Credentials are read from <credentials>_TOKEN in the environment
and are resolved before any network call. Uploads are never
retried; a duplicate version is a terminal failure.`,
	RunE: runPublishCmd,
}

func init() {
	publishCmd.Flags().StringVar(&pubDist, "dist", "", "artifact directory (default: from config)")
	publishCmd.Flags().StringVar(&pubIndexURL, "index-url", "", "publish to this index instead of the configured targets")
	publishCmd.Flags().StringVar(&pubCredentials, "credentials", "", "credential env var prefix for --index-url")

	rootCmd.AddCommand(publishCmd)
}

func runPublishCmd(cmd *cobra.Command, args []string) error {
	dist := pubDist
	if dist == "" {
		dist = cfg.Dist
	}

	targets, err := resolveTargets()
	if err != nil {
		return err
	}

	artifacts, err := artifact.Collect(dist)
	if err != nil {
		return fmt.Errorf("collecting artifacts: %w", err)
	}
	if len(artifacts) == 0 {
		return fmt.Errorf("no artifacts in %s to publish", dist)
	}

	ctx := context.Background()
	color := output.UseColor()
	w := os.Stdout
	pub := publish.NewPublisher(verbose)

	start := time.Now()
	output.SectionStart(w, "slipway_publish", "Publish")
	sec := output.NewSection(w, "Publish", 0, color)

	var pubErr error
	for _, target := range targets {
		results, err := pub.Publish(ctx, target, artifacts)
		for _, r := range results {
			status := "success"
			if !r.OK {
				status = "failed"
			}
			sec.Row("%-40s %s  %s", r.Artifact, output.StatusIcon(status, color), target.IndexURL)
		}
		if err != nil {
			pubErr = err
			break
		}
	}

	sec.Separator()
	sec.Row("%-20s %s", "total", time.Since(start).Round(time.Millisecond))
	sec.Close()
	output.SectionEnd(w, "slipway_publish")

	return pubErr
}

// resolveTargets picks the ad-hoc flag target or all configured ones.
func resolveTargets() ([]publish.Target, error) {
	if pubIndexURL != "" {
		if pubCredentials == "" {
			return nil, fmt.Errorf("--index-url requires --credentials")
		}
		return []publish.Target{{IndexURL: pubIndexURL, Credentials: pubCredentials}}, nil
	}

	var targets []publish.Target
	for _, p := range cfg.Pipelines {
		if p.On != config.OnTag {
			continue
		}
		for _, t := range p.Publish {
			targets = append(targets, publish.Target{IndexURL: t.IndexURL, Credentials: t.Credentials})
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no publish targets configured")
	}
	return targets, nil
}
