package tui

import "github.com/charmbracelet/lipgloss"

var (
	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	// TitleStyle styles the line above a table or picker.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

	// FaintStyle is used for hints and secondary text.
	FaintStyle = lipgloss.NewStyle().Faint(true)

	statusStyles = map[string]lipgloss.Style{
		// Terminal states
		"found":   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"ok":      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"bundled": lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		"custom":  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),

		// Active states
		"probing":   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"resolving": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),

		// Nothing there / warning
		"none": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"warn": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),

		// Error
		"error": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"fail":  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),

		// Pending
		"pending": lipgloss.NewStyle().Faint(true),
		"system":  lipgloss.NewStyle(),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
