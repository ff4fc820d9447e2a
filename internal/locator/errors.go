package locator

import (
	"fmt"
	"strings"
)

// InstallCommand is suggested whenever no installation can be found.
const InstallCommand = "npm install -g @anthropic-ai/claude-code"

// NotFoundError indicates no Claude CLI installation was found anywhere.
type NotFoundError struct {
	Searched []string
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	b.WriteString("claude CLI not found. Searched:\n")
	for _, loc := range e.Searched {
		b.WriteString("  - ")
		b.WriteString(loc)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Install it with `%s`, or point claudiatron at an existing binary with `claudiatron binary set <path>`.", InstallCommand)
	return b.String()
}

// ValidationError indicates a user-supplied binary path was rejected.
type ValidationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid claude binary %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid claude binary %s: %s", e.Path, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
