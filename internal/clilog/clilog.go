// Package clilog writes per-run plain-text log lines to the file named
// by a binary's --log flag (§6), tagging every line with a correlation
// id so concurrent invocations writing to a shared log (e.g. a CI
// pipeline running both minic-front and minic-back) can be told apart.
package clilog

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
)

// Logger appends timestamped, correlation-id-tagged lines to one run's
// log file.
type Logger struct {
	w     io.WriteCloser
	runID uuid.UUID
}

// Open creates (or appends to) the log file at path and assigns it a
// fresh run id.
func Open(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Logger{w: f, runID: uuid.New()}, nil
}

// RunID returns this run's correlation id.
func (l *Logger) RunID() uuid.UUID {
	return l.runID
}

func (l *Logger) Printf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.w, "%s [%s] %s\n", time.Now().UTC().Format(time.RFC3339), l.runID, line)
}

// Close flushes and closes the underlying log file.
func (l *Logger) Close() error {
	return l.w.Close()
}
