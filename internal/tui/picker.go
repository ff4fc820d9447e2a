package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"claudiatron/internal/locator"
)

// PickerKeyMap lists the bindings the installation picker responds to.
type PickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

// DefaultPickerKeys are vim-style plus arrow bindings.
var DefaultPickerKeys = PickerKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "use"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "q", "ctrl+c"),
		key.WithHelp("esc/q", "cancel"),
	),
}

var cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)

// PickerModel lets the user choose one installation from a list.
type PickerModel struct {
	keys      PickerKeyMap
	items     []locator.Installation
	current   string
	focused   int
	chosen    bool
	cancelled bool
}

// NewPickerModel builds a picker over items. The item whose path equals
// current is focused and marked.
func NewPickerModel(items []locator.Installation, current string) PickerModel {
	m := PickerModel{keys: DefaultPickerKeys, items: items, current: current}
	for i, it := range items {
		if it.Path == current {
			m.focused = i
			break
		}
	}
	return m
}

// Init satisfies the tea.Model interface.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update satisfies the tea.Model interface.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.focused > 0 {
			m.focused--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.focused < len(m.items)-1 {
			m.focused++
		}
	case key.Matches(keyMsg, m.keys.Select):
		if len(m.items) > 0 {
			m.chosen = true
		}
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Quit):
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

// View satisfies the tea.Model interface.
func (m PickerModel) View() string {
	if m.chosen || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Select a claude installation"))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(FaintStyle.Render("No installations found."))
		b.WriteString("\n")
	}
	for i, it := range m.items {
		cursor := "  "
		if i == m.focused {
			cursor = cursorStyle.Render("> ")
		}
		marker := " "
		if it.Path == m.current {
			marker = "*"
		}
		kind := string(it.Type)
		fmt.Fprintf(&b, "%s%s %s  %s  %s\n",
			cursor,
			marker,
			StatusStyle(kind).Render(pad(kind, 7)),
			pad(TruncateWithEllipsis(it.Path, 56), 56),
			FaintStyle.Render(fmt.Sprintf("%s  %s", NonEmptyOrDash(locator.ExtractVersion(it.Version)), it.Source)),
		)
	}

	b.WriteString("\n")
	b.WriteString(FaintStyle.Render(m.helpLine()))
	b.WriteString("\n")
	return b.String()
}

func (m PickerModel) helpLine() string {
	bindings := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Select, m.keys.Quit}
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

// Selected returns the chosen installation once the user pressed enter.
func (m PickerModel) Selected() (locator.Installation, bool) {
	if !m.chosen || m.focused >= len(m.items) {
		return locator.Installation{}, false
	}
	return m.items[m.focused], true
}

// RunPicker shows the picker on out, reading keys from in, and returns the
// chosen installation. ok is false when the user cancelled.
func RunPicker(in io.Reader, out io.Writer, items []locator.Installation, current string) (locator.Installation, bool, error) {
	p := tea.NewProgram(NewPickerModel(items, current), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return locator.Installation{}, false, err
	}
	m, ok := final.(PickerModel)
	if !ok {
		return locator.Installation{}, false, nil
	}
	inst, chosen := m.Selected()
	return inst, chosen, nil
}
