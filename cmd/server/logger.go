package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/sakif/taskboard/internal/config"
)

// newLogger builds the process logger. Text output is the default for
// terminals; LOG_FORMAT=json suits log collectors.
func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
