// Package cli implements the moldplan command-line interface: one-shot
// planning runs, the HTTP server, and fleet catalog validation.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "moldplan",
	Short: "Monthly injection-molding production planner",
	Long: `moldplan schedules injection-molding production for a calendar month:
feed it a machine fleet, a mold catalog, and component demand, and it
searches for a high-yield, low-changeover schedule using a genetic
algorithm over a deterministic decoder.`,
}

// Execute runs the root command, exiting the process on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
