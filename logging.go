package main

import (
	"fmt"
	"io"
	"log/slog"
)

// Build the command line logger: text for people, JSON for pipelines
func newLogger(w io.Writer, level string, json bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler.WithAttrs([]slog.Attr{slog.String("service", "hashlife")})), nil
}
