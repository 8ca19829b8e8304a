package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/harunnryd/studioport/internal/config"
	"github.com/harunnryd/studioport/internal/convert"
	"github.com/harunnryd/studioport/internal/logger"
	"github.com/harunnryd/studioport/internal/render"
)

const TraceHeader = "X-Trace-Id"

// Server exposes the converter over HTTP.
type Server struct {
	cfg          config.ServerConfig
	params       convert.Params
	factory      *render.FormatterFactory
	opts         []convert.Option
	server       *http.Server
	listener     net.Listener
	shutdownTTL  time.Duration
	maxBodyBytes int64
	started      bool
	startTime    time.Time
	mu           sync.RWMutex
}

func New(cfg config.ServerConfig, params convert.Params, factory *render.FormatterFactory, opts ...convert.Option) (*Server, error) {
	readTimeout, err := config.DurationOrDefault(cfg.ReadTimeout, config.DefaultServerReadTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse server read timeout: %w", err)
	}
	writeTimeout, err := config.DurationOrDefault(cfg.WriteTimeout, config.DefaultServerWriteTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse server write timeout: %w", err)
	}
	idleTimeout, err := config.DurationOrDefault(cfg.IdleTimeout, config.DefaultServerIdleTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse server idle timeout: %w", err)
	}
	shutdownTimeout, err := config.DurationOrDefault(cfg.ShutdownTimeout, config.DefaultServerShutdownTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse server shutdown timeout: %w", err)
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = config.DefaultServerMaxBodyBytes
	}

	s := &Server{
		cfg:          cfg,
		params:       params,
		factory:      factory,
		opts:         opts,
		shutdownTTL:  shutdownTimeout,
		maxBodyBytes: maxBody,
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	return s, nil
}

// Handler returns the routed handler with trace ids attached.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/convert", s.handleConvert)
	return withTrace(mux)
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("server already started")
	}

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.server.Addr, err)
	}
	s.listener = ln

	go func() {
		slog.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
		}
	}()

	s.started = true
	s.startTime = time.Now()
	return nil
}

// Addr is the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.server.Addr
}

func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		slog.Info("HTTP server not started, skipping stop")
		return nil
	}

	slog.Info("Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTTL)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.started = false
	s.listener = nil
	slog.Info("HTTP server stopped")
	return nil
}

func withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" {
			traceID = ulid.Make().String()
		}
		w.Header().Set(TraceHeader, traceID)
		next.ServeHTTP(w, r.WithContext(logger.WithTraceID(r.Context(), traceID)))
	})
}
