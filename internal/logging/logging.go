// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects level, handler format and destination.
type Options struct {
	Level  string // debug|info|warn|error
	Format string // text|json
	// Output is "stderr" (default), "stdout", or a file path.
	Output string
	// AddSource includes file:line in records.
	AddSource bool
}

// New builds a logger without installing it. The returned closer releases a
// log file when one was opened.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	var w io.Writer
	switch opts.Output {
	case "", "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		f, err := os.OpenFile(opts.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
	}
	l, c, err := newLogger(w, opts.Format, level, opts.AddSource)
	if err != nil {
		if f, ok := w.(*os.File); ok && f != os.Stderr && f != os.Stdout {
			f.Close()
		}
	}
	return l, c, err
}

func newLogger(w io.Writer, format string, level slog.Level, addSource bool) (*slog.Logger, io.Closer, error) {
	ho := &slog.HandlerOptions{Level: level, AddSource: addSource}
	var h slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		h = slog.NewTextHandler(w, ho)
	case "json":
		h = slog.NewJSONHandler(w, ho)
	default:
		return nil, nil, fmt.Errorf("invalid log format: %s", format)
	}
	var c io.Closer = nopCloser{}
	if wc, ok := w.(io.Closer); ok && w != os.Stderr && w != os.Stdout {
		c = wc
	}
	return slog.New(h), c, nil
}

// Setup installs the configured logger as the slog default.
func Setup(opts Options) (io.Closer, error) {
	l, c, err := New(opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(l)
	slog.Debug("logger initialized", "level", opts.Level, "format", opts.Format, "output", opts.Output)
	return c, nil
}

// ParseLevel maps a level name to slog.Level; empty means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
