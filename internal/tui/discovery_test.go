package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"claudiatron/internal/locator"
)

func TestNewDiscoveryModelRows(t *testing.T) {
	m := NewDiscoveryModel([]string{"path", "direct", "nvm", "fnm"})
	if len(m.rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(m.rows))
	}
	for _, row := range m.rows {
		if row.Fields[1] != "pending" {
			t.Errorf("row %s: expected pending, got %q", row.Key, row.Fields[1])
		}
	}
	if !strings.Contains(m.View(), "Probing 0/4 sources") {
		t.Errorf("unexpected footer:\n%s", m.View())
	}
}

func TestDiscoveryReporterUpdatesRows(t *testing.T) {
	m := NewDiscoveryModel([]string{"path", "nvm"})
	var msgs []tea.Msg
	r := NewDiscoveryReporter(func(msg tea.Msg) { msgs = append(msgs, msg) })

	r.Progress("path", false, nil)
	r.Progress("path", true, []locator.Installation{{Path: "/usr/local/bin/claude"}})
	r.Progress("nvm", false, nil)
	r.Progress("nvm", true, nil)

	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(ProgressModel)
	}

	want := [][]string{
		{"path", "found", "1", "/usr/local/bin/claude"},
		{"nvm", "none", "0", "-"},
	}
	for i, row := range m.rows {
		for j, v := range want[i] {
			if row.Fields[j] != v {
				t.Errorf("row %d col %d = %q, want %q", i, j, row.Fields[j], v)
			}
		}
	}
	if processed, total := m.progressCounts(); processed != 2 || total != 2 {
		t.Errorf("progressCounts = %d/%d, want 2/2", processed, total)
	}
}

func TestProbingRowIsNotCounted(t *testing.T) {
	m := NewDiscoveryModel([]string{"path"})
	updated, _ := m.Update(DiscoveryUpdate("path", false, nil))
	m = updated.(ProgressModel)

	if processed, _ := m.progressCounts(); processed != 0 {
		t.Errorf("expected probing row to be unprocessed, got %d", processed)
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]Column{
		{Header: "TYPE", Width: 4},
		{Header: "PATH", Width: 4},
	}, [][]string{
		{"bundled", "claude-code"},
		{"system", "/usr/bin/claude"},
	})

	want := "TYPE     PATH\n" +
		"bundled  claude-code\n" +
		"system   /usr/bin/claude\n"
	if out != want {
		t.Errorf("RenderTable mismatch:\n got: %q\nwant: %q", out, want)
	}
}
