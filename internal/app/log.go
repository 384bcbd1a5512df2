package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// gistHandler is a custom slog.Handler that formats log records as:
//
//	<timestamp>\t<level>\t<opID>\t<message>\t<key=value ...>
//
// Every record goes to w. Records at or above consoleLevel also go to console.
type gistHandler struct {
	w            io.Writer
	console      io.Writer
	consoleLevel slog.Level
	opID         string
	attrs        []slog.Attr
}

func (h *gistHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *gistHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\t%s\t%s\t%s", r.Time.UTC().Format("2006-01-02T15:04:05Z"), r.Level, h.opID, r.Message)

	for _, a := range h.attrs {
		fmt.Fprintf(&b, "\t%s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, "\t%s=%v", a.Key, a.Value)
		return true
	})
	b.WriteByte('\n')
	line := b.String()

	if _, err := io.WriteString(h.w, line); err != nil {
		return err
	}
	if h.console != nil && r.Level >= h.consoleLevel {
		if _, err := io.WriteString(h.console, line); err != nil {
			return err
		}
	}
	return nil
}

func (h *gistHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &h2
}

func (h *gistHandler) WithGroup(string) slog.Handler { return h }

// newLogger creates a structured logger that writes everything to
// logDir/gist.log and warnings and errors to stderr.
// It returns the slog.Logger, the open log file (for cleanup), and any error.
func newLogger(logDir string, opID string) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(logDir, "gist.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	handler := &gistHandler{
		w:            f,
		console:      os.Stderr,
		consoleLevel: slog.LevelWarn,
		opID:         opID,
	}
	return slog.New(handler), f, nil
}

// slogAdapter wraps *slog.Logger to satisfy the chat.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }
