package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/slipway-ci/slipway/src/config"
	"github.com/slipway-ci/slipway/src/pipeline"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "slipway",
	Short: "Build-and-publish pipeline orchestrator",
	Long:  "Slipway — evaluates push events, runs stage pipelines across a build matrix, and publishes artifacts to package indexes.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// version works without a config file
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .slipway.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

// ExitCode maps an Execute error to the process exit status. A fatal stage
// failure propagates the stage command's exit code unchanged; everything
// else exits 1.
func ExitCode(err error) int {
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) && stageErr.ExitCode > 0 {
		return stageErr.ExitCode
	}
	return 1
}
