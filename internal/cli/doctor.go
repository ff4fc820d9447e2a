package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"claudiatron/internal/config"
	"claudiatron/internal/locator"
	"claudiatron/internal/paths"
	"claudiatron/internal/settings"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, settings and the claude binary",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Summary string `json:"summary"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(homeDir)
	if err != nil {
		return err
	}

	var checks []healthCheck

	cfg, cfgErr := config.Load(pp.ConfigFile)
	checks = append(checks, checkConfig(cfg, cfgErr))
	if cfgErr != nil {
		// Nothing else can be built without a config.
		return writeDoctorResult(cmd, pp.Root, checks)
	}

	a, err := openApp(cmd)
	if err != nil {
		checks = append(checks, healthCheck{Name: "Settings", Status: "error", Summary: err.Error()})
		return writeDoctorResult(cmd, pp.Root, checks)
	}
	defer a.Close()

	ctx := commandContext(cmd)
	checks = append(checks, checkSettings(ctx, a.store))
	checks = append(checks, checkSidecar(ctx, a.loc))
	checks = append(checks, checkDiscovery(ctx, a.loc))
	checks = append(checks, checkBinary(ctx, a.loc, cfg.Binary.MinimumVersion))

	return writeDoctorResult(cmd, pp.Root, checks)
}

func checkConfig(cfg config.Config, cfgErr error) healthCheck {
	if cfgErr != nil {
		return healthCheck{Name: "Config", Status: "error", Summary: cfgErr.Error()}
	}

	var warnings, errors int
	for _, v := range cfg.Validate() {
		switch v.Level {
		case "warning":
			warnings++
		case "error":
			errors++
		}
	}

	summary := fmt.Sprintf("discovery order %s", joinComma(cfg.Binary.DiscoveryOrder))
	if errors > 0 {
		return healthCheck{Name: "Config", Status: "error", Summary: fmt.Sprintf("%s; %d errors", summary, errors)}
	}
	if warnings > 0 {
		return healthCheck{Name: "Config", Status: "warning", Summary: fmt.Sprintf("%s; %d warnings", summary, warnings)}
	}
	return healthCheck{Name: "Config", Status: "ok", Summary: summary}
}

func checkSettings(ctx context.Context, store *settings.Store) healthCheck {
	entries, err := store.List(ctx)
	if err != nil {
		return healthCheck{Name: "Settings", Status: "error", Summary: err.Error()}
	}
	return healthCheck{
		Name:    "Settings",
		Status:  "ok",
		Summary: fmt.Sprintf("%d stored in %s", len(entries), store.Path()),
	}
}

func checkSidecar(ctx context.Context, loc *locator.Locator) healthCheck {
	if loc.IsSidecarAvailable(ctx) {
		return healthCheck{Name: "Sidecar", Status: "ok", Summary: loc.SidecarPath()}
	}
	return healthCheck{Name: "Sidecar", Status: "warning", Summary: "not runnable: " + loc.SidecarPath()}
}

func checkDiscovery(ctx context.Context, loc *locator.Locator) healthCheck {
	installs := loc.DiscoverSystemInstallations(ctx)
	if len(installs) == 0 {
		return healthCheck{
			Name:    "Discovery",
			Status:  "warning",
			Summary: fmt.Sprintf("no system installations in %d locations", len(loc.SearchedLocations())),
		}
	}
	var sources []string
	seen := map[string]bool{}
	for _, inst := range installs {
		if !seen[inst.Source] {
			seen[inst.Source] = true
			sources = append(sources, inst.Source)
		}
	}
	return healthCheck{
		Name:    "Discovery",
		Status:  "ok",
		Summary: fmt.Sprintf("%d found (%s)", len(installs), joinComma(sources)),
	}
}

func checkBinary(ctx context.Context, loc *locator.Locator, minimum string) healthCheck {
	status := loc.CheckVersion(ctx)
	if !status.IsInstalled {
		return healthCheck{Name: "Binary", Status: "error", Summary: firstLine(status.Output)}
	}
	summary := fmt.Sprintf("%s %s", status.Path, status.Version)
	if minimum != "" && !status.MeetsMinimum {
		return healthCheck{Name: "Binary", Status: "warning", Summary: fmt.Sprintf("%s; below minimum %s", summary, minimum)}
	}
	return healthCheck{Name: "Binary", Status: "ok", Summary: summary}
}

func writeDoctorResult(cmd *cobra.Command, root string, checks []healthCheck) error {
	if outputJSON {
		return writeJSON(cmd, checks)
	}

	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold.Render("CLAUDIATRON HEALTH:")+" "+root)

	for _, c := range checks {
		var statusStr string
		switch c.Status {
		case "ok":
			statusStr = green.Render("OK")
		case "warning":
			statusStr = yellow.Render("WARN")
		case "error":
			statusStr = red.Render("ERROR")
		}
		fmt.Fprintf(out, "  %-12s %s    %s\n", c.Name+":", statusStr, c.Summary)
	}

	return nil
}

func joinComma(items []string) string {
	if len(items) == 0 {
		return ""
	}
	result := items[0]
	for _, item := range items[1:] {
		result += ", " + item
	}
	return result
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
