// Package observability reports errors and panics to Sentry and logs
// completed HTTP requests.
package observability

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/edutrack/institute/pkg/requestid"
)

var ErrInitFailed = errors.New("failed to initialize error reporting")

type Config struct {
	DSN              string  `env:"SENTRY_DSN"`
	Environment      string  `env:"APP_ENV" envDefault:"development"`
	Release          string  `env:"APP_RELEASE"`
	TracesSampleRate float64 `env:"SENTRY_TRACES_SAMPLE_RATE" envDefault:"0"`
}

// Init configures the global Sentry client. An empty DSN leaves reporting
// disabled and is not an error.
func Init(cfg Config) error {
	if cfg.DSN == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		AttachStacktrace: true,
		TracesSampleRate: cfg.TracesSampleRate,
	})
	if err != nil {
		return errors.Join(ErrInitFailed, err)
	}
	return nil
}

// Flush waits for buffered events until ctx expires. Its signature matches
// httpserver stop hooks.
func Flush(ctx context.Context) error {
	timeout := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	sentry.Flush(timeout)
	return nil
}

// CaptureError sends err with the request id of ctx attached.
func CaptureError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		if id := requestid.FromContext(ctx); id != "" {
			scope.SetTag("request_id", id)
		}
		hub.CaptureException(err)
	})
}
