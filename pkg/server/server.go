package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/config"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/engine"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/events"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/telemetry/health"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/telemetry/metrics"
)

// Options assembles a Server.
type Options struct {
	// Config carries listen address and timeouts.
	Config config.ServerConfig

	// Engine executes governance operations. Required.
	Engine *engine.Engine

	// Events answers audit queries. Required.
	Events events.Storage

	// Health serves the probe endpoints. Optional; probes answer ok
	// without it.
	Health *health.Checker

	// Metrics serves the exposition endpoint. Optional.
	Metrics *metrics.Collector

	// MetricsPath defaults to /metrics.
	MetricsPath string

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Server is the HTTP API server.
type Server struct {
	cfg         config.ServerConfig
	engine      *engine.Engine
	events      events.Storage
	health      *health.Checker
	metrics     *metrics.Collector
	metricsPath string
	logger      *slog.Logger

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.Mutex
	running      bool
}

// New creates a server from options.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	checker := opts.Health
	if checker == nil {
		checker = health.New(0)
	}
	metricsPath := opts.MetricsPath
	if metricsPath == "" {
		metricsPath = config.DefaultMetricsPath
	}
	return &Server{
		cfg:         opts.Config,
		engine:      opts.Engine,
		events:      opts.Events,
		health:      checker,
		metrics:     opts.Metrics,
		metricsPath: metricsPath,
		logger:      logger.With("component", "server"),
	}
}

// Handler returns the complete route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/policies", s.handleRegisterPolicy)
	mux.HandleFunc("GET /v1/policies/{id}", s.handleGetPolicy)
	mux.HandleFunc("POST /v1/execute", s.handleExecute)

	mux.HandleFunc("GET /v1/forums/{id}", s.handleGetForum)
	mux.HandleFunc("POST /v1/forums/{id}/submit", s.handleSubmit)
	mux.HandleFunc("POST /v1/forums/{id}/stakeholders", s.handleAddStakeholder)
	mux.HandleFunc("PUT /v1/forums/{id}/stakeholders/{user}/role", s.handleSetRole)

	mux.HandleFunc("GET /v1/activations/{id}", s.handleGetActivation)
	mux.HandleFunc("POST /v1/activations/{id}/start", s.handleActivationTransition("start"))
	mux.HandleFunc("POST /v1/activations/{id}/complete", s.handleActivationTransition("complete"))
	mux.HandleFunc("POST /v1/activations/{id}/cancel", s.handleActivationTransition("cancel"))

	mux.HandleFunc("GET /v1/events", s.handleQueryEvents)

	mux.HandleFunc("GET /healthz", s.health.LivenessHandler())
	mux.HandleFunc("GET /readyz", s.health.ReadinessHandler())
	if s.metrics != nil {
		mux.Handle("GET "+s.metricsPath, s.metrics.Handler())
	}

	return s.withRequestLogging(mux)
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.running = true
	s.httpServer = &http.Server{
		Addr:           s.cfg.ListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    s.cfg.ReadTimeout,
		WriteTimeout:   s.cfg.WriteTimeout,
		IdleTimeout:    s.cfg.IdleTimeout,
		MaxHeaderBytes: s.cfg.MaxHeaderBytes,
	}
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "address", s.cfg.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.Info("server shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		err = s.httpServer.Shutdown(ctx)
	})
	return err
}
