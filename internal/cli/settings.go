package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"claudiatron/internal/settings"
	"claudiatron/internal/tui"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect stored application settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every stored setting",
		Args:  cobra.NoArgs,
		RunE:  runSettingsList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print a single stored setting",
		Args:  cobra.ExactArgs(1),
		RunE:  runSettingsGet,
	})
	return cmd
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		entries, err := a.store.List(commandContext(cmd))
		if err != nil {
			return err
		}
		if outputJSON {
			if entries == nil {
				entries = []settings.Entry{}
			}
			return writeJSON(cmd, entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No settings stored.")
			return nil
		}

		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			updated := "-"
			if !e.UpdatedAt.IsZero() {
				updated = e.UpdatedAt.Local().Format(time.DateTime)
			}
			rows = append(rows, []string{e.Key, e.Value, updated})
		}
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderTable([]tui.Column{
			{Header: "KEY"},
			{Header: "VALUE"},
			{Header: "UPDATED"},
		}, rows))
		return nil
	})
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		value, ok, err := a.store.Get(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("setting %q is not set", args[0])
		}
		if outputJSON {
			return writeJSON(cmd, map[string]string{"key": args[0], "value": value})
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	})
}
