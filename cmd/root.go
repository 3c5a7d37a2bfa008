// =============================================================================
// Retail Sales Cleaner - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (salesclean)
//   ├── cleanCmd (salesclean clean)
//   ├── validateCmd (salesclean validate)
//   └── versionCmd (salesclean version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --env-file, --verbose)
//   2. Loading the configuration file and environment overrides
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/config"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// envFile holds the path to an optional .env file.
var envFile string

// verbose enables debug logging when set to true.
var verbose bool

// appConfig is the configuration loaded before any subcommand runs.
var appConfig *config.MainConfig

// log is the logger configured before any subcommand runs.
var log zerolog.Logger

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "salesclean",
	Short: "Retail Sales Cleaner - Reconcile, clean and report on POS sales exports",
	Long: `Retail Sales Cleaner reads a point-of-sale transaction export with missing
or inconsistent values, reconstructs what can be recovered from reference rows
and the identity total = price * quantity, drops what cannot, validates the
result and writes a cleaned dataset, a KPI report and a sales chart.

Example Usage:
  salesclean clean                           # Clean the configured input file
  salesclean clean --input sales.csv -v      # Clean a specific file with debug logs
  salesclean clean --dry-run                 # Run and validate without writing files
  salesclean validate                        # Check configuration and input columns`,

	SilenceUsage:  true,
	SilenceErrors: true,

	// PersistentPreRunE loads configuration and logging for every subcommand.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing config.yaml is fine unless the user pointed at it.
		optional := !cmd.Flags().Changed("config")

		cfg, err := config.LoadMainConfig(cfgFile, optional)
		if err != nil {
			return err
		}
		if err := config.ApplyEnv(cfg, envFile); err != nil {
			return err
		}
		if verbose {
			cfg.LogLevel = "debug"
		}

		appConfig = cfg
		log = logger.New(cfg.LogLevel)
		cmd.SetContext(logger.WithContext(cmd.Context(), log))

		log.Debug().Str("config", cfgFile).Bool("config_optional", optional).Msg("configuration loaded")
		return nil
	},

	// Without a subcommand, print the help message.
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// --config flag: Allows the user to specify a custom configuration file.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	// --env-file flag: Loads environment overrides from a specific file.
	// Without it, a .env file in the working directory is used when present.
	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		"",
		"Path to a .env file with SALESCLEAN_* overrides",
	)

	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
