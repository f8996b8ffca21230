package cmd

import (
	"fmt"
	"os"

	"github.com/slipway-ci/slipway/src/output"
	"github.com/slipway-ci/slipway/src/vet"
	"github.com/spf13/cobra"
)

var vetCmd = &cobra.Command{
	Use:   "vet",
	Short: "Check the config for inlined secrets",
	Long: `Scan the slipway config file and pipeline env blocks for secret
values. Publish credentials must be env var references; a token
pasted into config fails the check.`,
	RunE: runVet,
}

func init() {
	rootCmd.AddCommand(vetCmd)
}

func runVet(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = ".slipway.yml"
	}

	scanner, err := vet.NewScanner()
	if err != nil {
		return err
	}

	var findings []vet.Finding
	if _, statErr := os.Stat(path); statErr == nil {
		fileFindings, err := scanner.ScanFile(path)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		findings = append(findings, fileFindings...)
	}
	findings = append(findings, scanner.CheckEnvBlocks(cfg)...)

	color := output.UseColor()
	sec := output.NewSection(os.Stdout, "Vet", 0, color)

	if len(findings) == 0 {
		sec.Row("%s no inlined secrets found", output.StatusIcon("success", color))
		sec.Close()
		return nil
	}

	for _, f := range findings {
		loc := f.File
		if f.Line > 0 {
			loc = fmt.Sprintf("%s:%d", f.File, f.Line)
		}
		sec.Row("%s %-32s %s (%s)", output.StatusIcon("failed", color), loc, f.Description, f.Rule)
	}
	sec.Close()

	return fmt.Errorf("vet failed: %d suspected inlined secrets", len(findings))
}
