// =============================================================================
// Retail Sales Cleaner - Clean Command
// =============================================================================
//
// This file defines the 'clean' command, which runs the full cleaning
// pipeline on one input file.
//
// COMMAND USAGE:
//   salesclean clean [flags]
//
// FLAGS:
//   --input       : Input file (.csv or .xlsx), overrides input_file
//   --output-dir  : Output directory, overrides output_dir
//   --workers     : Goroutines used for reconciliation and aggregation
//   --xlsx        : Also write the cleaned dataset as XLSX
//   --dry-run     : Run and validate without writing output files
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/cleaner"
	"github.com/ginjaninja78/retail-sales-cleaner/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	inputFile string
	outputDir string
	workers   int
	writeXLSX bool
	dryRun    bool
)

// =============================================================================
// CLEAN COMMAND DEFINITION
// =============================================================================

// cleanCmd represents the 'clean' command.
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean a sales export and write the dataset, report and chart",
	Long: `The clean command loads the sales export, fills missing item, price and
total values from reference rows and arithmetic, drops records that remain
incomplete, and checks that total == price * quantity for every kept record.

On success:
  - The cleaned dataset is written to the output directory
  - The performance report is printed and written next to it
  - The sales chart is rendered as PNG

On error:
  - Nothing is written to the output directory
  - The diagnostic is logged and the command exits with status 1`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runClean(cmd)
	},
}

// init registers the clean command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().StringVar(&inputFile, "input", "", "Input file to clean (.csv or .xlsx)")
	cleanCmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for output files")
	cleanCmd.Flags().IntVar(&workers, "workers", 0, "Number of goroutines for reconciliation (default from config)")
	cleanCmd.Flags().BoolVar(&writeXLSX, "xlsx", false, "Also write the cleaned dataset as XLSX")
	cleanCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run and validate without writing output files")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runClean applies the flag overrides and runs the pipeline.
func runClean(cmd *cobra.Command) error {
	cfg := appConfig

	// Flags take precedence over env and file values.
	if cmd.Flags().Changed("input") {
		cfg.InputFile = inputFile
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if writeXLSX {
		cfg.WriteXLSX = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	result := cleaner.New(cfg, cleaner.Options{DryRun: dryRun}).Run(cmd.Context())
	if !result.Success {
		return result.Error
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, result.Report)
	for _, path := range result.Outputs {
		size, err := utils.GetFileSize(path)
		if err != nil {
			return fmt.Errorf("output %s missing after write: %w", path, err)
		}
		fmt.Fprintf(out, "Saved: %s (%d bytes)\n", path, size)
	}

	log.Info().
		Int("cleaned", result.Stats.RowsCleaned).
		Int("dropped", result.Stats.RowsDropped).
		Dur("elapsed", result.Stats.ProcessingTime).
		Msg("cleaning complete")

	return nil
}
