package cmd

import (
	"fmt"
	"os"

	"github.com/slipway-ci/slipway/src/badge"
	"github.com/slipway-ci/slipway/src/summary"
	"github.com/spf13/cobra"
)

var (
	badgeFont string
	badgeOut  string
	badgeSize float64
)

var badgeCmd = &cobra.Command{
	Use:   "badge",
	Short: "Generate a status badge SVG from the last run",
	RunE:  runBadge,
}

func init() {
	badgeCmd.Flags().StringVar(&badgeFont, "font", "", "TTF/OTF file for measured text widths (default: approximate)")
	badgeCmd.Flags().StringVarP(&badgeOut, "out", "o", "", "output file (default: stdout)")
	badgeCmd.Flags().Float64Var(&badgeSize, "size", 11, "font point size")

	rootCmd.AddCommand(badgeCmd)
}

func runBadge(cmd *cobra.Command, args []string) error {
	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	status := "unknown"
	if sum, err := summary.Load(rootDir); err == nil {
		status = sum.Status()
	}

	metrics := badge.ApproxMetrics(badgeSize)
	if badgeFont != "" {
		metrics, err = badge.LoadFontFile(badgeFont, badgeSize)
		if err != nil {
			return err
		}
	}

	svg := badge.New(metrics).Generate(badge.Badge{
		Label: "pipeline",
		Value: status,
		Color: badge.StatusColor(status),
	})

	if badgeOut == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(badgeOut, []byte(svg), 0o644); err != nil {
		return fmt.Errorf("writing badge: %w", err)
	}
	return nil
}
