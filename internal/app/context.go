// Package app holds the state shared by every command: settings, the native
// engine and the process wide logging, telemetry and metrics setup.
package app

import (
	"fmt"
	"time"

	"github.com/tphakala/sherpa-go/internal/buildinfo"
	"github.com/tphakala/sherpa-go/internal/conf"
	"github.com/tphakala/sherpa-go/internal/errors"
	"github.com/tphakala/sherpa-go/internal/logger"
	"github.com/tphakala/sherpa-go/internal/observability"
	"github.com/tphakala/sherpa-go/internal/sherpa"
	"github.com/tphakala/sherpa-go/internal/telemetry"
)

const telemetryFlushTimeout = 2 * time.Second

// Context is created once in main and handed to every command.
type Context struct {
	Info     *buildinfo.Context
	Engine   sherpa.Engine
	Settings *conf.Settings
	Metrics  *observability.Metrics

	closers []func() error
}

// New returns a Context for engine. Settings stay nil until Setup.
func New(info *buildinfo.Context, engine sherpa.Engine) *Context {
	return &Context{Info: info, Engine: engine}
}

// Setup loads the configuration and initializes logging, telemetry, metrics
// and the default execution provider, in that order.
func (c *Context) Setup(configFile string) error {
	settings, err := conf.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	c.Settings = settings

	cl, err := logger.NewCentralLogger(&settings.Main.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetGlobal(cl)
	c.closers = append(c.closers, cl.Close)

	if err := telemetry.InitSentry(&settings.Telemetry, c.Info.Version()); err != nil {
		// telemetry is optional, keep running without it
		GetLogger().Warn("error reporting disabled", logger.Error(err))
	} else if settings.Telemetry.Enabled {
		c.closers = append(c.closers, func() error {
			telemetry.Flush(telemetryFlushTimeout)
			return nil
		})
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	c.Metrics = metrics

	sherpa.SetDefaultProvider(settings.Engine.Provider)

	GetLogger().Info("sherpa-go initialized",
		logger.String("version", c.Info.Version()),
		logger.String("provider", sherpa.DefaultProvider()),
		logger.Int("threads", settings.Engine.Threads))
	return nil
}

// NewSynthesizer creates the configured synthesis handle.
func (c *Context) NewSynthesizer() (*sherpa.OfflineTts, error) {
	if !c.Settings.TTS.Enabled {
		return nil, disabled("tts")
	}
	opts, err := c.Settings.TtsOptions()
	if err != nil {
		return nil, err
	}
	return sherpa.NewOfflineTts(c.Engine, opts)
}

// NewRecognizer creates the configured recognizer handle.
func (c *Context) NewRecognizer() (*sherpa.OfflineRecognizer, error) {
	if !c.Settings.ASR.Enabled {
		return nil, disabled("asr")
	}
	opts, err := c.Settings.RecognizerOptions()
	if err != nil {
		return nil, err
	}
	return sherpa.NewOfflineRecognizer(c.Engine, opts)
}

// NewTagger creates the configured audio tagging handle.
func (c *Context) NewTagger() (*sherpa.AudioTagger, error) {
	if !c.Settings.Tagging.Enabled {
		return nil, disabled("tagging")
	}
	opts, err := c.Settings.TaggerOptions()
	if err != nil {
		return nil, err
	}
	return sherpa.NewAudioTagger(c.Engine, opts)
}

// Close releases what Setup acquired, in reverse order.
func (c *Context) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func disabled(section string) error {
	return errors.Newf("%s is disabled in the configuration", section).
		Component("app").
		Category(errors.CategoryConfiguration).
		Context("section", section).
		Build()
}

// GetLogger returns the app module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("app")
}
