package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"claudiatron/internal/locator"
	"claudiatron/internal/tui"
)

var listNoProgress bool

func newBinaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "binary",
		Short: "Resolve, list and override the claude binary",
	}

	cmd.AddCommand(newBinaryResolveCmd())
	cmd.AddCommand(newBinaryListCmd())
	cmd.AddCommand(newBinaryVersionCmd())
	cmd.AddCommand(newBinarySetCmd())
	cmd.AddCommand(newBinaryResetCmd())
	cmd.AddCommand(newBinaryPreferCmd())
	cmd.AddCommand(newBinarySelectCmd())
	cmd.AddCommand(newBinaryWatchCmd())
	return cmd
}

func newBinaryResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Print the claude binary that would be spawned",
		Args:  cobra.NoArgs,
		RunE:  runBinaryResolve,
	}
}

type resolveOutput struct {
	Path       string `json:"path"`
	Executable string `json:"executable"`
	Bundled    bool   `json:"bundled"`
}

func runBinaryResolve(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		var sw *tui.StatusWriter
		if !outputJSON && tui.IsTerminal(cmd.ErrOrStderr()) {
			sw = tui.NewStatusWriter(cmd.ErrOrStderr(), "Resolving claude binary")
		}
		ref, err := a.loc.Resolve(commandContext(cmd))
		if sw != nil {
			sw.Stop()
		}
		if err != nil {
			return err
		}

		out := resolveOutput{
			Path:       ref,
			Executable: a.loc.Executable(ref),
			Bundled:    ref == locator.BundledSentinel,
		}
		if outputJSON {
			return writeJSON(cmd, out)
		}
		if out.Bundled {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (bundled sidecar: %s)\n", out.Path, out.Executable)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.Path)
		return nil
	})
}

func newBinaryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the bundled sidecar and every system installation",
		Args:  cobra.NoArgs,
		RunE:  runBinaryList,
	}
	cmd.Flags().BoolVar(&listNoProgress, "no-progress", false, "Disable the live discovery table")
	return cmd
}

var installationColumns = []tui.Column{
	{Header: "TYPE", Width: 7},
	{Header: "SOURCE", Width: 10},
	{Header: "VERSION", Width: 7},
	{Header: "PATH", Width: 4},
}

func runBinaryList(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		ctx := commandContext(cmd)
		out := cmd.OutOrStdout()

		var installs []locator.Installation
		switch tui.DetectMode(out, listNoProgress, outputJSON) {
		case tui.ModeTUI:
			model := tui.NewDiscoveryModel(a.loc.Sources())
			if _, err := tui.RunWithWork(out, model, func(send func(tea.Msg)) {
				installs = a.loc.AllInstallationsWithProgress(ctx, tui.NewDiscoveryReporter(send).Progress)
			}); err != nil {
				return err
			}
			fmt.Fprintln(out)
		default:
			installs = a.loc.AllInstallations(ctx)
		}

		if outputJSON {
			if installs == nil {
				installs = []locator.Installation{}
			}
			return writeJSON(cmd, installs)
		}
		if len(installs) == 0 {
			return &locator.NotFoundError{Searched: a.loc.SearchedLocations()}
		}
		fmt.Fprint(out, tui.RenderTable(installationColumns, installationRows(installs)))
		return nil
	})
}

func installationRows(installs []locator.Installation) [][]string {
	rows := make([][]string, 0, len(installs))
	for _, inst := range installs {
		rows = append(rows, []string{
			string(inst.Type),
			inst.Source,
			tui.NonEmptyOrDash(locator.ExtractVersion(inst.Version)),
			inst.Path,
		})
	}
	return rows
}

func newBinaryVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Resolve the binary and report its version",
		Args:  cobra.NoArgs,
		RunE:  runBinaryVersion,
	}
}

func runBinaryVersion(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		status := a.loc.CheckVersion(commandContext(cmd))
		if outputJSON {
			return writeJSON(cmd, status)
		}

		out := cmd.OutOrStdout()
		if !status.IsInstalled {
			fmt.Fprintf(out, "claude CLI not available:\n%s\n", status.Output)
			return nil
		}
		version := tui.NonEmptyOrDash(status.Version)
		fmt.Fprintf(out, "claude %s (%s)\n", version, status.Path)
		if minimum := a.cfg.Binary.MinimumVersion; minimum != "" && !status.MeetsMinimum {
			fmt.Fprintf(out, "warning: version %s is below the configured minimum %s\n", version, minimum)
		}
		return nil
	})
}

func newBinarySetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <path>",
		Short: "Use a specific claude binary",
		Args:  cobra.ExactArgs(1),
		RunE:  runBinarySet,
	}
}

func runBinarySet(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		inst, err := a.loc.SetCustomBinaryPath(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		if outputJSON {
			return writeJSON(cmd, inst)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Using %s (%s)\n", inst.Path, inst.Version)
		return nil
	})
}

func newBinaryResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the stored binary and go back to auto-discovery",
		Args:  cobra.NoArgs,
		RunE:  runBinaryReset,
	}
}

func runBinaryReset(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		if err := a.loc.ResetToAutoDiscovery(commandContext(cmd)); err != nil {
			return err
		}
		if outputJSON {
			return writeJSON(cmd, map[string]bool{"reset": true})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Stored binary cleared; the next resolve searches again.")
		return nil
	})
}

func newBinaryPreferCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "prefer [bundled|system|unset]",
		Short:     "Show or change the installation preference",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"bundled", "system", "unset"},
		RunE:      runBinaryPrefer,
	}
}

func runBinaryPrefer(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		ctx := commandContext(cmd)
		if len(args) == 1 {
			pref, err := locator.ParsePreference(args[0])
			if err != nil {
				return err
			}
			if err := a.loc.SetPreference(ctx, pref); err != nil {
				return err
			}
		}

		pref := a.loc.Preference(ctx)
		if outputJSON {
			return writeJSON(cmd, map[string]string{"preference": pref.String()})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Installation preference: %s\n", pref)
		return nil
	})
}

func newBinarySelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select",
		Short: "Pick an installation interactively",
		Args:  cobra.NoArgs,
		RunE:  runBinarySelect,
	}
}

// pickInstallation shows the picker. Tests replace it.
var pickInstallation = func(cmd *cobra.Command, items []locator.Installation, current string) (locator.Installation, bool, error) {
	if !tui.IsTerminal(cmd.OutOrStdout()) {
		return locator.Installation{}, false, errors.New("select needs an interactive terminal; use `claudiatron binary set <path>` instead")
	}
	return tui.RunPicker(cmd.InOrStdin(), cmd.OutOrStdout(), items, current)
}

func runBinarySelect(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		ctx := commandContext(cmd)
		items := a.loc.AllInstallations(ctx)
		if len(items) == 0 {
			return &locator.NotFoundError{Searched: a.loc.SearchedLocations()}
		}
		current, err := a.loc.Resolve(ctx)
		if err != nil {
			a.log.Warn("resolve current claude binary for picker", zap.Error(err))
		}

		chosen, ok, err := pickInstallation(cmd, items, current)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "No change.")
			return nil
		}

		if chosen.Type == locator.TypeBundled {
			if err := a.loc.UseBundled(ctx); err != nil {
				return err
			}
		} else if _, err := a.loc.SetCustomBinaryPath(ctx, chosen.Path); err != nil {
			return err
		}
		if outputJSON {
			return writeJSON(cmd, chosen)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Using %s (%s)\n", chosen.Path, chosen.Source)
		return nil
	})
}

func newBinaryWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-resolve whenever the resolved binary changes on disk",
		Args:  cobra.NoArgs,
		RunE:  runBinaryWatch,
	}
}

func runBinaryWatch(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
		defer stop()

		cw, err := a.loc.NewCacheWatcher(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !outputJSON {
			fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", cw.Target())
		}

		done := make(chan error, 1)
		go func() { done <- cw.Run(ctx) }()

		enc := json.NewEncoder(out)
		for ev := range cw.Events() {
			printWatchEvent(out, enc, ev)
		}
		return <-done
	})
}

func printWatchEvent(out io.Writer, enc *json.Encoder, ev locator.WatchEvent) {
	if outputJSON {
		payload := struct {
			locator.WatchEvent
			Error string `json:"error,omitempty"`
		}{WatchEvent: ev}
		if ev.Err != nil {
			payload.Error = ev.Err.Error()
		}
		_ = enc.Encode(payload)
		return
	}
	if ev.Err != nil {
		fmt.Fprintf(out, "%s %s: %v\n", ev.Op, ev.Path, ev.Err)
		return
	}
	fmt.Fprintf(out, "%s %s: now using %s\n", ev.Op, ev.Path, ev.Resolved)
}
