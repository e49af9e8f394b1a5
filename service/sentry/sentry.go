package sentryutil

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/minters-xyz/go-minters/env"
	"github.com/minters-xyz/go-minters/service/logger"
)

// Init sets up the global sentry client. A missing DSN disables reporting
// without failing startup.
func Init() {
	dsn := env.GetString("SENTRY_DSN")
	if dsn == "" {
		logger.For(nil).Info("SENTRY_DSN not set, error reporting disabled")
		return
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env.GetString("ENV"),
		Release:          env.GetString("VERSION"),
		TracesSampleRate: 0.2,
	})
	if err != nil {
		logger.For(nil).Errorf("failed to initialize sentry: %s", err)
	}
}

// ReportError captures a non-fatal error on the current hub
func ReportError(ctx context.Context, err error) {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}

// RecoverAndRaise reports a panic to sentry and re-panics so the process (or
// the enclosing recovery middleware) can handle it
func RecoverAndRaise(ctx context.Context) {
	if rvr := recover(); rvr != nil {
		if hub := hubFromContext(ctx); hub != nil {
			hub.Recover(rvr)
			sentry.Flush(2 * time.Second)
		}
		panic(rvr)
	}
}

func hubFromContext(ctx context.Context) *sentry.Hub {
	if ctx != nil {
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			return hub
		}
	}
	return sentry.CurrentHub()
}
