package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"claudiatron/internal/paths"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the application directory, default config and settings database",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(homeDir)
	if err != nil {
		return err
	}
	if err := ensureConfigFileExists(pp); err != nil {
		return err
	}

	return withApp(cmd, func(a *app) error {
		if outputJSON {
			return writeJSON(cmd, map[string]string{
				"root":     a.paths.Root,
				"config":   a.paths.ConfigFile,
				"database": a.paths.DatabaseFile,
				"logs":     a.paths.LogsDir,
			})
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Initialized %s\n", a.paths.Root)
		fmt.Fprintf(out, "  config:   %s\n", a.paths.ConfigFile)
		fmt.Fprintf(out, "  database: %s\n", a.paths.DatabaseFile)
		fmt.Fprintf(out, "  logs:     %s\n", a.paths.LogsDir)
		return nil
	})
}
