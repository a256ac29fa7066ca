// Package testutil provides logging helpers shared by package tests.
package testutil

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// NewTestLogger returns a debug-level logger that writes to t.Log, so records
// only show up for failing tests or under -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return newLogger(tbWriter{t})
}

// LogRecorder is a logger whose output is kept for assertions.
type LogRecorder struct {
	*slog.Logger

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewLogRecorder returns a debug-level logger that records every line and
// mirrors it to t.Log.
func NewLogRecorder(t testing.TB) *LogRecorder {
	t.Helper()
	r := &LogRecorder{}
	r.Logger = newLogger(io.MultiWriter(lockedWriter{r}, tbWriter{t}))
	return r
}

// Lines returns the recorded log lines.
func (r *LogRecorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Split(strings.TrimRight(r.buf.String(), "\n"), "\n")
}

// Contains reports whether any recorded line contains all of parts.
func (r *LogRecorder) Contains(parts ...string) bool {
	for _, line := range r.Lines() {
		all := true
		for _, p := range parts {
			if !strings.Contains(line, p) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type lockedWriter struct{ r *LogRecorder }

func (w lockedWriter) Write(p []byte) (int, error) {
	w.r.mu.Lock()
	defer w.r.mu.Unlock()
	return w.r.buf.Write(p)
}

type tbWriter struct {
	t testing.TB
}

func (w tbWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
