package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	mw "github.com/tphakala/sherpa-go/internal/api/middleware"
	"github.com/tphakala/sherpa-go/internal/errors"
	"github.com/tphakala/sherpa-go/internal/logger"
	"github.com/tphakala/sherpa-go/internal/observability"
	"github.com/tphakala/sherpa-go/internal/sherpa"
)

// Synthesizer turns text into audio. *sherpa.OfflineTts implements it.
type Synthesizer interface {
	Backend() string
	Generate(text string, sid int, speed float32) (*sherpa.AudioBuffer, error)
	GenerateWithZipvoice(req sherpa.ZipvoiceRequest) (*sherpa.AudioBuffer, error)
}

// Transcriber turns audio into text. *sherpa.OfflineRecognizer implements it.
type Transcriber interface {
	Backend() string
	Transcribe(sampleRate int, samples []float32) (*sherpa.RecognizerResult, error)
}

// Tagger labels audio events. *sherpa.AudioTagger implements it.
type Tagger interface {
	Backend() string
	TopK() int
	ComputeTopK(sampleRate int, samples []float32, topK int) ([]sherpa.AudioEvent, error)
}

// TagPublisher forwards tagging results. *mqtt.Client implements it.
type TagPublisher interface {
	PublishTags(ctx context.Context, source string, events []sherpa.AudioEvent) error
}

// Server is the HTTP front end for the loaded models.
type Server struct {
	echo   *echo.Echo
	config *Config
	log    logger.Logger

	synthesizer Synthesizer
	transcriber Transcriber
	tagger      Tagger
	publisher   TagPublisher
	metrics     *observability.Metrics
	cache       *synthesisCache

	version   string
	startTime time.Time

	mu      sync.Mutex
	running bool
	done    chan error
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithSynthesizer enables POST /api/v1/tts.
func WithSynthesizer(s Synthesizer) ServerOption {
	return func(srv *Server) {
		srv.synthesizer = s
	}
}

// WithTranscriber enables POST /api/v1/transcribe.
func WithTranscriber(t Transcriber) ServerOption {
	return func(srv *Server) {
		srv.transcriber = t
	}
}

// WithTagger enables POST /api/v1/tag.
func WithTagger(t Tagger) ServerOption {
	return func(srv *Server) {
		srv.tagger = t
	}
}

// WithPublisher forwards every tagging result to p.
func WithPublisher(p TagPublisher) ServerOption {
	return func(srv *Server) {
		srv.publisher = p
	}
}

// WithMetrics records request metrics and serves GET /metrics.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(srv *Server) {
		srv.metrics = m
	}
}

// WithVersion sets the version reported by the health check.
func WithVersion(v string) ServerOption {
	return func(srv *Server) {
		srv.version = v
	}
}

// WithLogger replaces the api module logger.
func WithLogger(l logger.Logger) ServerOption {
	return func(srv *Server) {
		srv.log = l
	}
}

// New creates a server. It does not start listening.
func New(config *Config, opts ...ServerOption) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.New(fmt.Errorf("invalid server configuration: %w", err)).
			Component("api").
			Category(errors.CategoryConfiguration).
			Build()
	}

	s := &Server{
		config:    config,
		cache:     newSynthesisCache(config.CacheTTL),
		version:   "dev",
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = GetLogger()
	}

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Debug = config.Debug
	s.echo.Server.ReadTimeout = config.ReadTimeout
	s.echo.Server.WriteTimeout = config.WriteTimeout
	s.echo.Server.IdleTimeout = config.IdleTimeout

	s.setupMiddleware()
	s.setupRoutes()

	s.log.Info("HTTP server initialized",
		logger.String("address", config.Listen),
		logger.Bool("tts", s.synthesizer != nil),
		logger.Bool("asr", s.transcriber != nil),
		logger.Bool("tagging", s.tagger != nil),
		logger.Bool("mqtt", s.publisher != nil))
	return s, nil
}

// setupMiddleware configures the Echo middleware stack.
func (s *Server) setupMiddleware() {
	s.echo.Use(echomw.Recover())
	s.echo.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	s.echo.Use(mw.NewRequestLogger(s.log))
	if s.metrics != nil {
		s.echo.Use(mw.NewMetrics(s.metrics.HTTP))
	}
	s.echo.Use(echomw.BodyLimit(s.config.BodyLimit))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	v1 := s.echo.Group("/api/v1")
	v1.GET("/health", s.healthCheck)
	v1.POST("/tts", s.handleSynthesize)
	v1.POST("/transcribe", s.handleTranscribe)
	v1.POST("/tag", s.handleTag)

	if s.metrics != nil && s.config.Metrics {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}
}

// healthCheck handles the server health check endpoint.
func (s *Server) healthCheck(c echo.Context) error {
	uptime := time.Since(s.startTime)

	services := map[string]string{}
	if s.synthesizer != nil {
		services["tts"] = s.synthesizer.Backend()
	}
	if s.transcriber != nil {
		services["asr"] = s.transcriber.Backend()
	}
	if s.tagger != nil {
		services["tagging"] = s.tagger.Backend()
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":         "healthy",
		"version":        s.version,
		"services":       services,
		"uptime":         uptime.String(),
		"uptime_seconds": uptime.Seconds(),
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}

// Start begins serving HTTP requests in a background goroutine and returns
// immediately. Errors other than a clean shutdown are reported by Shutdown.
func (s *Server) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.done = make(chan error, 1)

	go func() {
		s.done <- s.startBlocking()
	}()
	s.log.Info("HTTP server starting", logger.String("address", s.config.Listen))
}

// startBlocking serves HTTP requests until the server is shut down.
func (s *Server) startBlocking() error {
	err := s.echo.Start(s.config.Listen)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("server error", logger.Error(err))
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting at most the configured
// shutdown timeout or until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		s.log.Error("error during server shutdown", logger.Error(err))
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.mu.Lock()
	done := s.done
	s.running = false
	s.done = nil
	s.mu.Unlock()

	var serveErr error
	if done != nil {
		serveErr = <-done
	}
	s.cache.flush()

	s.log.Info("server shutdown complete")
	return serveErr
}

// Run serves until ctx ends and then shuts down gracefully. It returns early
// with the error if the listener fails.
func (s *Server) Run(ctx context.Context) error {
	s.Start()
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	select {
	case err := <-done:
		s.mu.Lock()
		s.running = false
		s.done = nil
		s.mu.Unlock()
		return err
	case <-ctx.Done():
	}
	return s.Shutdown(context.WithoutCancel(ctx))
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
