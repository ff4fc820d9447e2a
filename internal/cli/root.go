package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is reported by --version.
var Version = "dev"

var (
	homeDir    string
	outputJSON bool
	verbose    bool
)

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "claudiatron",
		Short:         "Locate and manage the Claude Code CLI binary",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&homeDir, "home", "", "Application directory (default ~/.claudiatron)")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Mirror debug logs to stderr")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newBinaryCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newSettingsCmd())
	cmd.AddCommand(newDoctorCmd())

	return cmd
}
