package logger

import (
	"context"

	"github.com/sirupsen/logrus"
)

type loggerContextKey struct{}

type loggerContext struct {
	entry *logrus.Entry
}

var defaultLogger = logrus.New()

// SetLoggerOptions configures the package-level logger
func SetLoggerOptions(optionsFunc func(logger *logrus.Logger)) {
	optionsFunc(defaultLogger)
}

// For returns a log entry scoped to the supplied context. Fields added via
// NewContextWithFields are carried on every entry logged with that context.
func For(ctx context.Context) *logrus.Entry {
	if ctx == nil {
		return defaultLogger.WithContext(context.Background())
	}

	if lc, ok := ctx.Value(loggerContextKey{}).(*loggerContext); ok {
		return lc.entry.WithContext(ctx)
	}

	return defaultLogger.WithContext(ctx)
}

// NewContextWithFields returns a context whose logger carries the given fields
func NewContextWithFields(ctx context.Context, fields logrus.Fields) context.Context {
	entry := For(ctx).WithFields(fields)
	return context.WithValue(ctx, loggerContextKey{}, &loggerContext{entry: entry})
}
