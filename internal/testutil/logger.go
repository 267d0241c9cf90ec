// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"bytes"
	"io"
	"log/slog"
)

// NopLogger returns a logger for services and handlers under test whose log
// lines nobody reads.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// BufferLogger returns a debug-level JSON logger and the buffer it writes to,
// for tests that assert on what was logged.
func BufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}
