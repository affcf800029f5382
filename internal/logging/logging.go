// Package logging configures the process logger. The terminal belongs to the
// TUI, so logs go to a file or nowhere.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ParseLevel accepts debug, info, warn or error, case-insensitive.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}

// Setup returns a text logger writing to path and installs it as the slog
// default. The standard log package is routed to the same file. With an
// empty path the logger discards everything. The closer releases the file.
func Setup(path, level string) (*slog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	if path == "" {
		log := slog.New(slog.DiscardHandler)
		slog.SetDefault(log)
		return log, io.NopCloser(nil), nil
	}

	f, err := tea.LogToFile(path, "drum-machine")
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(log)
	log.Info("logging started", "level", lvl.String())
	return log, f, nil
}
