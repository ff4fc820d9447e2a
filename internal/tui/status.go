package tui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// StatusWriter prints a spinning status line while a blocking locator call
// (resolve, version probe) runs. The line is rewritten in place.
type StatusWriter struct {
	w          io.Writer
	mu         sync.Mutex
	label      string
	phaseStart time.Time
	done       chan struct{}
	exited     chan struct{}
	stopped    bool
}

// NewStatusWriter starts a background spinner that renders label to w
// every 100ms.
func NewStatusWriter(w io.Writer, label string) *StatusWriter {
	sw := &StatusWriter{
		w:          w,
		label:      label,
		phaseStart: time.Now(),
		done:       make(chan struct{}),
		exited:     make(chan struct{}),
	}
	go sw.loop()
	return sw
}

// Update changes the label and restarts the elapsed timer.
func (sw *StatusWriter) Update(label string) {
	sw.mu.Lock()
	sw.label = label
	sw.phaseStart = time.Now()
	sw.mu.Unlock()
}

// Stop clears the status line and waits for the spinner to exit. It is safe
// to call more than once.
func (sw *StatusWriter) Stop() {
	sw.mu.Lock()
	if sw.stopped {
		sw.mu.Unlock()
		return
	}
	sw.stopped = true
	sw.mu.Unlock()
	close(sw.done)
	<-sw.exited
	fmt.Fprint(sw.w, "\r\033[K")
}

func (sw *StatusWriter) loop() {
	defer close(sw.exited)
	tick := 0
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sw.done:
			return
		case <-ticker.C:
			sw.mu.Lock()
			label := sw.label
			start := sw.phaseStart
			sw.mu.Unlock()

			spinner := spinnerFrames[tick%len(spinnerFrames)]
			tick++
			fmt.Fprintf(sw.w, "\r\033[K%s %s (%s)", spinner, label, formatElapsed(time.Since(start)))
		}
	}
}

// formatElapsed formats a duration for display in the status line.
func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < 10*time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
