// =============================================================================
// Retail Sales Cleaner - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Retail Sales Cleaner CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   salesclean clean         - Clean the sales export and write all outputs
//   salesclean validate      - Check configuration and input columns
//   salesclean version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Loading, reconciliation, validation, KPIs and outputs
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/retail-sales-cleaner/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
