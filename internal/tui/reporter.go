package tui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"claudiatron/internal/locator"
)

// DiscoveryReporter turns locator discovery callbacks into row updates for a
// model built with NewDiscoveryModel.
type DiscoveryReporter struct {
	send func(tea.Msg)
}

// NewDiscoveryReporter constructs a reporter that forwards updates to send.
func NewDiscoveryReporter(send func(tea.Msg)) *DiscoveryReporter {
	return &DiscoveryReporter{send: send}
}

// Progress implements locator.ProgressFunc.
func (r *DiscoveryReporter) Progress(source string, done bool, found []locator.Installation) {
	r.send(DiscoveryUpdate(source, done, found))
}

// DiscoveryUpdate builds the row update for one discovery callback.
func DiscoveryUpdate(source string, done bool, found []locator.Installation) RowUpdateMsg {
	if !done {
		return RowUpdateMsg{Key: source, Fields: map[string]string{"STATUS": "probing"}}
	}
	status, first := "none", ""
	if len(found) > 0 {
		status, first = "found", found[0].Path
	}
	return RowUpdateMsg{Key: source, Fields: map[string]string{
		"STATUS": status,
		"FOUND":  strconv.Itoa(len(found)),
		"FIRST":  NonEmptyOrDash(first),
	}}
}
