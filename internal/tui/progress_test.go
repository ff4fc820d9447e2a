package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"claudiatron/internal/locator"
)

const longNVMPath = "/home/dev/.nvm/versions/node/v20.11.1/lib/node_modules/@anthropic-ai/claude-code/cli.js"

func applyMsgs(t *testing.T, m ProgressModel, msgs ...tea.Msg) (ProgressModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var updated tea.Model
		updated, cmd = m.Update(msg)
		m = updated.(ProgressModel)
	}
	return m, cmd
}

func TestDiscoveryUpdateFields(t *testing.T) {
	tests := []struct {
		name  string
		done  bool
		found []locator.Installation
		want  map[string]string
	}{
		{"probing", false, nil, map[string]string{"STATUS": "probing"}},
		{"none", true, nil, map[string]string{"STATUS": "none", "FOUND": "0", "FIRST": "-"}},
		{"found", true, []locator.Installation{
			{Path: "/opt/homebrew/bin/claude"},
			{Path: "/usr/local/bin/claude"},
		}, map[string]string{"STATUS": "found", "FOUND": "2", "FIRST": "/opt/homebrew/bin/claude"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := DiscoveryUpdate("direct", tt.done, tt.found)
			if msg.Key != "direct" {
				t.Errorf("key = %q, want direct", msg.Key)
			}
			if len(msg.Fields) != len(tt.want) {
				t.Fatalf("fields = %v, want %v", msg.Fields, tt.want)
			}
			for k, v := range tt.want {
				if msg.Fields[k] != v {
					t.Errorf("%s = %q, want %q", k, msg.Fields[k], v)
				}
			}
		})
	}
}

func TestDiscoveryUpdateForUnknownSourceIsIgnored(t *testing.T) {
	m := NewDiscoveryModel([]string{"path", "direct"})
	m, _ = applyMsgs(t, m, DiscoveryUpdate("brew", true, []locator.Installation{{Path: "/opt/homebrew/bin/claude"}}))

	for _, row := range m.rows {
		if row.Fields[1] != "pending" {
			t.Errorf("row %s changed to %q", row.Key, row.Fields[1])
		}
	}
}

func TestDiscoveryViewScrollsLongPathWhileProbing(t *testing.T) {
	m := NewDiscoveryModel([]string{"nvm"})
	m, _ = applyMsgs(t, m, DiscoveryUpdate("nvm", true, []locator.Installation{{Path: longNVMPath}}))

	width := DiscoveryColumns[3].Width
	if view := m.View(); !strings.Contains(view, longNVMPath[:width]) {
		t.Errorf("expected first window of the path:\n%s", view)
	}

	m, _ = applyMsgs(t, m, tickMsg{})
	if view := m.View(); !strings.Contains(view, longNVMPath[1:width+1]) {
		t.Errorf("expected path to scroll by one after a tick:\n%s", view)
	}

	m, _ = applyMsgs(t, m, WorkDoneMsg{})
	view := m.View()
	if !strings.Contains(view, longNVMPath[:width-3]+"...") {
		t.Errorf("expected truncated path once done:\n%s", view)
	}
	if strings.Contains(view, "Probing") {
		t.Errorf("footer should disappear once done:\n%s", view)
	}
}

func TestDiscoveryFooterCountsFinishedSources(t *testing.T) {
	m := NewDiscoveryModel([]string{"path", "direct", "nvm", "fnm"})
	m, _ = applyMsgs(t, m,
		DiscoveryUpdate("path", true, []locator.Installation{{Path: "/usr/local/bin/claude"}}),
		DiscoveryUpdate("direct", true, nil),
		DiscoveryUpdate("nvm", false, nil),
	)

	if view := m.View(); !strings.Contains(view, "Probing 2/4 sources...") {
		t.Errorf("unexpected footer:\n%s", view)
	}
}

func TestDiscoveryModelStops(t *testing.T) {
	tests := []struct {
		name    string
		msg     tea.Msg
		wantErr bool
	}{
		{"work done", WorkDoneMsg{}, false},
		{"error", ErrorMsg{Err: errors.New("discovery aborted")}, true},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cmd := applyMsgs(t, NewDiscoveryModel([]string{"path"}), tt.msg)
			if !m.Done() {
				t.Error("expected model to be done")
			}
			if cmd == nil {
				t.Error("expected quit command")
			}
			if (m.Err() != nil) != tt.wantErr {
				t.Errorf("Err() = %v, wantErr %v", m.Err(), tt.wantErr)
			}
		})
	}
}

func TestDiscoveryErrorView(t *testing.T) {
	m, _ := applyMsgs(t, NewDiscoveryModel([]string{"path"}), ErrorMsg{Err: errors.New("discovery aborted")})
	if got := m.View(); got != "Error: discovery aborted\n" {
		t.Errorf("View() = %q", got)
	}
}

func TestTickRescheduledOnlyWhileProbing(t *testing.T) {
	m := NewDiscoveryModel([]string{"path"})
	m, cmd := applyMsgs(t, m, tickMsg{})
	if cmd == nil {
		t.Error("expected next tick while probing")
	}

	m, _ = applyMsgs(t, m, WorkDoneMsg{})
	if _, cmd = applyMsgs(t, m, tickMsg{}); cmd != nil {
		t.Error("expected no tick after discovery finished")
	}
}

func TestVersionCellFormatting(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", "-"},
		{"   ", "-"},
		{" 1.0.17 ", "1.0.17"},
	}
	for _, tt := range tests {
		if got := NonEmptyOrDash(tt.raw); got != tt.want {
			t.Errorf("NonEmptyOrDash(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
	if got := TruncateWithEllipsis("1.0.17 (Claude Code)", 7); got != "1.0...." {
		t.Errorf("TruncateWithEllipsis = %q", got)
	}
}
