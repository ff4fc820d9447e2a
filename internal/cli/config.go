package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"claudiatron/internal/config"
	"claudiatron/internal/paths"
)

const configHeader = `# claudiatron configuration.
# binary.discovery_order ranks the sources searched when no binary is stored:
# path, direct, nvm and fnm. Run "claudiatron doctor" after editing.
`

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit the claudiatron configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigEditCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration in YAML",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}
}

func newConfigEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open config.yaml in $VISUAL or $EDITOR, creating it with defaults first",
		Args:  cobra.NoArgs,
		RunE:  runConfigEdit,
	}
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(homeDir)
	if err != nil {
		return err
	}
	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return err
	}

	if outputJSON {
		return writeJSON(cmd, map[string]any{
			"file":       pp.ConfigFile,
			"validation": cfg.Validate(),
		})
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if ok, _ := paths.FileExists(pp.ConfigFile); ok {
		fmt.Fprintf(out, "# %s\n", pp.ConfigFile)
	} else {
		fmt.Fprintf(out, "# %s (missing, showing defaults)\n", pp.ConfigFile)
	}
	fmt.Fprint(out, string(data))
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(homeDir)
	if err != nil {
		return err
	}
	if err := ensureConfigFileExists(pp); err != nil {
		return err
	}

	editor := editorFromEnv()
	parts, err := splitEditorCommand(editor)
	if err != nil {
		return err
	}
	parts = append(parts, pp.ConfigFile)

	execCmd := exec.CommandContext(commandContext(cmd), parts[0], parts[1:]...)
	execCmd.Stdout = cmd.OutOrStdout()
	execCmd.Stderr = cmd.ErrOrStderr()
	execCmd.Stdin = cmd.InOrStdin()
	execCmd.Dir = pp.Root
	if err := execCmd.Run(); err != nil {
		return fmt.Errorf("run editor %q: %w", editor, err)
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return fmt.Errorf("edited config no longer parses: %w", err)
	}
	return reportValidation(cmd, cfg.Validate())
}

// reportValidation prints every finding and fails when any is an error, so a
// broken discovery_order or command list is caught before the next resolve.
func reportValidation(cmd *cobra.Command, results []config.ValidationResult) error {
	errs := 0
	for _, v := range results {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", v.Level, v.Message)
		if v.Level == "error" {
			errs++
		}
	}
	if errs > 0 {
		return fmt.Errorf("config has %d error(s)", errs)
	}
	return nil
}

// ensureConfigFileExists writes the default binary settings, with a short
// header, when no config file exists yet. An existing file is left alone.
func ensureConfigFileExists(pp paths.AppPaths) error {
	ok, err := paths.FileExists(pp.ConfigFile)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	if ok {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(pp.ConfigFile), 0o755); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	data, err := config.Default().Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(pp.ConfigFile, append([]byte(configHeader), data...), 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

func editorFromEnv() string {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return "vi"
}

// splitEditorCommand splits an editor value on whitespace, keeping quoted
// segments together so paths like "/opt/My Editor/bin/edit" -w work.
func splitEditorCommand(value string) ([]string, error) {
	var (
		parts   []string
		current strings.Builder
		quote   rune
		inWord  bool
	)
	for _, r := range value {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				parts = append(parts, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("editor command %q has an unterminated quote", value)
	}
	if inWord {
		parts = append(parts, current.String())
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("editor command %q is empty", value)
	}
	return parts, nil
}
