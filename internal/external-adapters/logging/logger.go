// Package logging adapts log/slog to the domain Logger interface and registers its CLI flags.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/ochairo/depack/internal/domain/interfaces"
)

// Flag names and accepted values
const (
	LevelFlagName  = "log-level"
	FormatFlagName = "log-format"

	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"

	FormatText = "text"
	FormatJSON = "json"
)

// Options holds the logging flag values
type Options struct {
	Level  string
	Format string
}

// RegisterFlags adds --log-level and --log-format to the flag set
func RegisterFlags(flags *pflag.FlagSet, opts *Options) {
	flags.StringVar(&opts.Level, LevelFlagName, LevelWarn,
		"log level: debug, info, warn or error")
	flags.StringVar(&opts.Format, FormatFlagName, FormatText,
		"log format: text or json")
}

// SlogLogger implements interfaces.Logger on top of slog
type SlogLogger struct {
	logger *slog.Logger
}

// New creates a logger writing to w with the given level and format
func New(w io.Writer, opts Options) (*SlogLogger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch opts.Format {
	case FormatText, "":
		handler = slog.NewTextHandler(w, handlerOpts)
	case FormatJSON:
		handler = slog.NewJSONHandler(w, handlerOpts)
	default:
		return nil, fmt.Errorf("invalid log format %q (use %s or %s)", opts.Format, FormatText, FormatJSON)
	}

	return &SlogLogger{logger: slog.New(handler)}, nil
}

// ParseLevel converts a level name into an slog level
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case LevelDebug:
		return slog.LevelDebug, nil
	case LevelInfo:
		return slog.LevelInfo, nil
	case LevelWarn, "":
		return slog.LevelWarn, nil
	case LevelError:
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("invalid log level %q (use debug, info, warn or error)", s)
	}
}

// Debug logs debug-level messages
func (l *SlogLogger) Debug(msg string, fields ...interfaces.Field) {
	l.log(slog.LevelDebug, msg, fields)
}

// Info logs informational messages
func (l *SlogLogger) Info(msg string, fields ...interfaces.Field) {
	l.log(slog.LevelInfo, msg, fields)
}

// Warn logs warning messages
func (l *SlogLogger) Warn(msg string, fields ...interfaces.Field) {
	l.log(slog.LevelWarn, msg, fields)
}

// Error logs error messages
func (l *SlogLogger) Error(msg string, fields ...interfaces.Field) {
	l.log(slog.LevelError, msg, fields)
}

func (l *SlogLogger) log(level slog.Level, msg string, fields []interfaces.Field) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	attrs := make([]slog.Attr, 0, len(fields))
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	l.logger.LogAttrs(ctx, level, msg, attrs...)
}
