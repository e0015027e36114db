// Package logging builds the process logger and carries per-request log
// entries through contexts.
package logging

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to stderr at level, formatted as "text" or
// "json".
func New(level, format string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(lvl)

	switch format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("logging: unknown format %q", format)
	}
	return logger, nil
}

type entryKey struct{}

// WithEntry returns a copy of ctx carrying e.
func WithEntry(ctx context.Context, e *logrus.Entry) context.Context {
	return context.WithValue(ctx, entryKey{}, e)
}

// FromContext returns the entry stored by WithEntry, or fallback when there
// is none.
func FromContext(ctx context.Context, fallback logrus.FieldLogger) logrus.FieldLogger {
	if e, ok := ctx.Value(entryKey{}).(*logrus.Entry); ok && e != nil {
		return e
	}
	return fallback
}
