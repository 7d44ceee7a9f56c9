// Package reporting sends crash reports to Sentry. Reporting is off unless a
// DSN is configured; the embedding application owns that decision.
package reporting

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
)

// Init configures Sentry with the given DSN. An empty DSN leaves reporting
// disabled.
func Init(dsn, release string) {
	if dsn == "" {
		return
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		AttachStacktrace: true,
		Release:          release,
	})
	if err != nil {
		slog.Error("sentry.Init:", "error", err)
	}
}

// PanicListener forwards a panic message to Sentry. Native shells hook this
// into their crash handlers.
func PanicListener(msg string) {
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelFatal)
	})

	sentry.CaptureMessage(msg)
	if result := sentry.Flush(6 * time.Second); !result {
		slog.Error("sentry.Flush: timeout")
	}
}
