package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/graphaudit/internal/preflight"
	"github.com/spf13/cobra"
)

// setupCmd represents the setup command
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Validate the environment before running the pipeline",
	Long: `Setup checks everything a pipeline run depends on: API credentials
(and that they are not the template placeholders), the Stirling PDF
service, input PDFs, the cache directory, and the index project
structure.

A failed check exits non-zero, so setup works as a CI gate too.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		report := preflight.NewChecker(cfg, os.Stdout).Run(context.Background())
		if !report.OK() {
			return fmt.Errorf("%d check(s) failed", report.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
