// =============================================================================
// Retail Sales Cleaner - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration
// and the input file header without cleaning anything.
//
// COMMAND USAGE:
//   salesclean validate [--input FILE]
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/cleaner"
)

var validateInput string

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and input columns without processing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		if cmd.Flags().Changed("input") {
			cfg.InputFile = validateInput
		}

		table, err := cleaner.LoadTable(cfg)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		if missing := table.MissingColumns(cfg.Columns.All()...); len(missing) > 0 {
			return fmt.Errorf("input %s is missing column(s): %s", cfg.InputFile, strings.Join(missing, ", "))
		}

		log.Debug().Strs("headers", table.Headers).Msg("input header")

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Configuration: OK")
		fmt.Fprintf(out, "Input:         %s (%d rows, %d columns)\n", cfg.InputFile, table.RowCount(), len(table.Headers))
		fmt.Fprintf(out, "Output dir:    %s\n", cfg.OutputDir)
		fmt.Fprintf(out, "Workers:       %d\n", cfg.Workers)
		return nil
	},
}

// init registers the validate command with the root command.
func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateInput, "input", "", "Input file to check (.csv or .xlsx)")
}
