package cmd

import (
	"fmt"
	"os"

	"github.com/slipway-ci/slipway/src/artifact"
	"github.com/slipway-ci/slipway/src/output"
	"github.com/spf13/cobra"
)

var artifactsDist string

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "List built distributions in the dist directory",
	RunE:  runArtifacts,
}

func init() {
	artifactsCmd.Flags().StringVar(&artifactsDist, "dist", "", "artifact directory (default: from config)")

	rootCmd.AddCommand(artifactsCmd)
}

func runArtifacts(cmd *cobra.Command, args []string) error {
	dist := artifactsDist
	if dist == "" {
		dist = cfg.Dist
	}

	artifacts, err := artifact.Collect(dist)
	if err != nil {
		return fmt.Errorf("collecting artifacts: %w", err)
	}

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	color := output.UseColor()
	sec := output.NewSection(os.Stdout, "Artifacts", 0, color)

	if len(artifacts) == 0 {
		sec.Row("none in %s", dist)
		sec.Close()
		return nil
	}

	for _, a := range artifacts {
		detail := string(a.Kind)
		if a.Platform != "" {
			detail = fmt.Sprintf("%s %s", a.Kind, a.Platform)
		}
		sec.Row("%-44s %-8s %s", a.File, a.Version, detail)
	}

	proj, err := artifact.LoadProject(rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	if problems := proj.Check(artifacts); len(problems) > 0 {
		sec.Separator()
		for _, p := range problems {
			sec.Row("%s %s", output.StatusIcon("failed", color), p)
		}
	}

	sec.Close()
	return nil
}
