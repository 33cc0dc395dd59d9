// Package telemetry provides opt-in error reporting through Sentry.
//
// Nothing is sent unless telemetry is enabled in the config. Events are
// stripped of user, host and runtime details before they leave the process.
package telemetry

import (
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tphakala/sherpa-go/internal/conf"
	"github.com/tphakala/sherpa-go/internal/errors"
	"github.com/tphakala/sherpa-go/internal/logger"
)

var (
	initMu      sync.Mutex
	initialized bool
)

// GetLogger returns the telemetry module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("telemetry")
}

// InitSentry initializes the Sentry SDK and installs the error reporter.
// It is a no-op when telemetry is disabled.
func InitSentry(settings *conf.TelemetrySettings, release string) error {
	return initSentry(settings, release, nil)
}

func initSentry(settings *conf.TelemetrySettings, release string, transport sentry.Transport) error {
	if !settings.Enabled {
		GetLogger().Info("telemetry is disabled (opt-in required)")
		return nil
	}

	initMu.Lock()
	defer initMu.Unlock()

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.DSN,
		SampleRate:       1.0,
		AttachStacktrace: false,
		Environment:      settings.Environment,
		ServerName:       "",
		Release:          fmt.Sprintf("sherpa-go@%s", release),
		BeforeSend:       beforeSend,
		Transport:        transport,
	})
	if err != nil {
		return errors.New(err).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Context("operation", "sentry-init").
			Build()
	}

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	initialized = true

	GetLogger().Info("telemetry enabled",
		logger.String("environment", settings.Environment),
		logger.String("release", release))
	return nil
}

// beforeSend strips host identifying data from every event.
func beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}
	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}
	event.Message = errors.ScrubMessage(event.Message)
	return event
}

// Flush waits up to timeout for queued events and detaches the reporter.
func Flush(timeout time.Duration) {
	initMu.Lock()
	defer initMu.Unlock()

	if !initialized {
		return
	}
	errors.SetTelemetryReporter(nil)
	if !sentry.Flush(timeout) {
		GetLogger().Warn("telemetry flush timed out", logger.Duration("timeout", timeout))
	}
	initialized = false
}
