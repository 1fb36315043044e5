// Package logging builds the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/m-mizutani/masq"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the handler and destination.
type Options struct {
	Level      string // debug, info, warn, error
	Format     string // text, json
	File       string // Rolling log file; empty for none.
	MaxSizeMB  int
	MaxBackups int
}

var bearerPattern = regexp.MustCompile(`(?i)^bearer\s+.+$`)

// redactOptions hides credentials wherever they appear in log attributes.
func redactOptions() []masq.Option {
	return []masq.Option{
		masq.WithFieldName("token"),
		masq.WithFieldName("Token"),
		masq.WithFieldName("password"),
		masq.WithFieldName("authorization"),
		masq.WithFieldName("Authorization"),
		masq.WithFieldPrefix("secret"),
		masq.WithRegex(bearerPattern),
	}
}

// New builds a logger writing to stderr and, when opts.File is set, to a
// rolling file. The returned closer releases the file; it is a no-op
// otherwise.
func New(opts Options) (*slog.Logger, io.Closer) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
		color            = true
	)

	if opts.File != "" {
		roller := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			Compress:   true,
		}
		w = io.MultiWriter(os.Stderr, roller)
		closer = roller
		color = false
	}

	return NewWithWriter(w, opts.Level, opts.Format, color), closer
}

// NewWithWriter builds a logger on w. Text output uses tint; color is only
// applied when requested.
func NewWithWriter(w io.Writer, level, format string, color bool) *slog.Logger {
	replace := masq.New(redactOptions()...)

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       ParseLevel(level),
			ReplaceAttr: replace,
		}))
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:       ParseLevel(level),
		ReplaceAttr: replace,
		NoColor:     !color,
	}))
}

// ParseLevel converts a textual log level; unknown values mean info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
