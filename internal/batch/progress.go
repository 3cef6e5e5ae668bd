package batch

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ProgressFunc is invoked after each completed item or chunk with the number
// of items completed so far and the total. Returning false stops the run
// cooperatively: no further records are produced.
type ProgressFunc func(done, total int) bool

// WithCancelFlag wraps a progress func so the run also stops once the flag is
// set. A nil inner func is allowed.
func WithCancelFlag(inner ProgressFunc, cancelled *atomic.Bool) ProgressFunc {
	return func(done, total int) bool {
		if cancelled.Load() {
			return false
		}
		if inner != nil {
			return inner(done, total)
		}
		return true
	}
}

// ConsoleProgress renders a progress bar on a terminal.
type ConsoleProgress struct {
	writer         io.Writer
	prefix         string
	width          int
	updateInterval time.Duration
	lastUpdate     time.Time
	startTime      time.Time
	mu             sync.Mutex
}

// NewConsoleProgress creates a console progress reporter.
func NewConsoleProgress(writer io.Writer, prefix string) *ConsoleProgress {
	if writer == nil {
		writer = os.Stderr
	}
	return &ConsoleProgress{
		writer:         writer,
		prefix:         prefix,
		width:          40,
		updateInterval: 100 * time.Millisecond,
	}
}

// WithUpdateInterval sets how frequently the bar redraws.
func (c *ConsoleProgress) WithUpdateInterval(interval time.Duration) *ConsoleProgress {
	c.updateInterval = interval
	return c
}

// Func returns the ProgressFunc feeding this bar. It never stops the run.
func (c *ConsoleProgress) Func() ProgressFunc {
	return func(done, total int) bool {
		c.update(done, total)
		return true
	}
}

// Finish prints a final newline and the elapsed time.
func (c *ConsoleProgress) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.startTime.IsZero() {
		return
	}
	elapsed := time.Since(c.startTime)
	_, _ = fmt.Fprintf(c.writer, "\n%sCompleted in %v\n", c.prefix, elapsed.Round(time.Millisecond))
}

func (c *ConsoleProgress) update(done, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.startTime.IsZero() {
		c.startTime = now
	}
	if now.Sub(c.lastUpdate) < c.updateInterval && done < total {
		return
	}
	c.lastUpdate = now

	if total == 0 {
		return
	}
	percent := float64(done) / float64(total) * 100.0
	filled := c.width * done / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", c.width-filled)
	status := fmt.Sprintf("\r%s[%s] %d/%d (%.1f%%)", c.prefix, bar, done, total, percent)

	if elapsed := now.Sub(c.startTime); elapsed > 0 && done > 0 {
		status += fmt.Sprintf(" %.1f/s", float64(done)/elapsed.Seconds())
	}
	_, _ = fmt.Fprint(c.writer, status)
}

// LogProgress returns a ProgressFunc that logs every interval items (and the
// final item) via slog.
func LogProgress(logger *slog.Logger, interval int) ProgressFunc {
	if logger == nil {
		logger = slog.Default()
	}
	if interval < 1 {
		interval = 1
	}
	return func(done, total int) bool {
		if done%interval == 0 || done == total {
			logger.Info("batch progress", "done", done, "total", total)
		}
		return true
	}
}
