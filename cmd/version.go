// =============================================================================
// Retail Sales Cleaner - Version Command
// =============================================================================
//
// Prints the release version, the build date and the Go runtime. Release
// builds stamp Version and BuildDate through ldflags:
//
//   go build -ldflags "-X github.com/ginjaninja78/retail-sales-cleaner/cmd.Version=1.2.0"
//
// A plain `go install` leaves Version as "dev"; the module version recorded in
// the binary's build info is shown instead when there is one.
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildDate = "unknown"
)

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the salesclean version",
	// Configuration is not needed to print a version.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "salesclean %s\n", resolveVersion())
		fmt.Fprintf(out, "  built:  %s\n", BuildDate)
		fmt.Fprintf(out, "  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

// resolveVersion prefers the ldflags value, then the module version.
func resolveVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
