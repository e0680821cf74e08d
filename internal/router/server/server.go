// Package server exposes the router over HTTP: the carrier callback, the
// message log API used by the console and the websocket tester.
package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	nsmserror "github.com/msto63/nsms/foundation/core/error"
	"github.com/msto63/nsms/internal/router"
	"github.com/msto63/nsms/internal/text"
	"github.com/msto63/nsms/pkg/core/config"
	"github.com/msto63/nsms/pkg/core/health"
	"github.com/msto63/nsms/pkg/core/logging"
)

// Server is the HTTP front of the router
type Server struct {
	httpServer *http.Server
	router     *router.Router
	tester     *router.TesterBackend
	texts      *text.Catalog
	health     *health.Registry
	logger     *logging.Logger
	config     Config
	startTime  time.Time
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Version      string

	// DefaultBackend is used by /router/receive when no backend is given.
	DefaultBackend string

	// UnsentAfter is the age after which queued messages count as unsent.
	UnsentAfter time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		Version:        "dev",
		DefaultBackend: "tester",
		UnsentAfter:    30 * time.Second,
	}
}

// ConfigFrom builds the server settings from the application config.
func ConfigFrom(cfg *config.Config, version string) Config {
	return Config{
		Host:           cfg.Router.Host,
		Port:           cfg.Router.Port,
		ReadTimeout:    cfg.Router.ReadTimeout.Duration,
		WriteTimeout:   cfg.Router.WriteTimeout.Duration,
		Version:        version,
		DefaultBackend: cfg.Router.DefaultBackend,
		UnsentAfter:    cfg.Router.UnsentAfter.Duration,
	}
}

// New creates the server. tester may be nil, which disables /ws/tester;
// texts may be nil, which disables /api/v1/texts.
func New(cfg Config, r *router.Router, tester *router.TesterBackend, texts *text.Catalog, registry *health.Registry, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.New("router-http")
	}
	if registry == nil {
		registry = health.NewRegistry("nsms", cfg.Version)
	}

	s := &Server{
		router:    r,
		tester:    tester,
		texts:     texts,
		health:    registry,
		logger:    logger,
		config:    cfg,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/router/receive", s.handleReceive)
	mux.HandleFunc("/api/v1/messages", s.handleMessages)
	mux.HandleFunc("/api/v1/messages.csv", s.handleMessagesCSV)
	mux.HandleFunc("/api/v1/messages/monthly", s.handleMonthly)
	mux.HandleFunc("/api/v1/messages/daily", s.handleDaily)
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/backends", s.handleBackends)
	mux.HandleFunc("/api/v1/texts", s.handleTexts)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/ws/tester", NewWebSocketHandler(r, tester, logger))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      loggingMiddleware(logger, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the HTTP handler with all routes.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection.
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, nsmserror.New("response writer cannot be hijacked").
			WithCode(nsmserror.CodeInternal)
	}
	w.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("Starting router HTTP server", "address", s.Address())
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Serve accepts connections on listener.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("Starting router HTTP server", "address", listener.Addr().String())
	if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// StartAsync starts the server asynchronously
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping router HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server address
func (s *Server) Address() string {
	return s.httpServer.Addr
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}
