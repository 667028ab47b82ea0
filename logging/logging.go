// ABOUTME: Structured logger setup on charmbracelet/log
// ABOUTME: Configures the package-level default logger and request-scoped loggers
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Init configures the default logger. Output goes to stderr so CLI
// results on stdout stay clean.
func Init(level, format string) error {
	return InitWriter(os.Stderr, level, format)
}

func InitWriter(w io.Writer, level, format string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	var formatter log.Formatter
	switch strings.ToLower(format) {
	case "", "text":
		formatter = log.TextFormatter
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	log.SetDefault(log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Formatter:       formatter,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	}))
	return nil
}

type ctxKey struct{}

// WithLogger stores a logger on the context.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger, or the default one.
func FromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// WithRequestID returns a context whose logger tags every line with id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return WithLogger(ctx, FromContext(ctx).With("request_id", id))
}
