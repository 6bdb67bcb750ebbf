// Package httpapi implements the HTTP request-boundary adapter (component
// H/J): it maps the two JSON endpoints described by the wire format onto
// the puzzle builder and verifier, and wraps them with the ambient
// concerns (CORS, metrics, structured logging, client-IP resolution) a
// production deployment needs. Grounded on the teacher's internal/server
// graceful-shutdown choreography, generalized from a raw TCP accept loop
// to an http.Server.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/realclientip/realclientip-go"
	"github.com/rs/cors"

	"github.com/fcaptcha/fcaptcha-go/internal/puzzle"
)

var errNoClientIP = errors.New("no client ip resolved")

// Config holds adapter-level settings independent of the core protocol
// configuration (which lives in internal/config).
type Config struct {
	BindAddress       string
	BindPort          uint16
	ShutdownTimeout   time.Duration
	TrustForwardedFor bool
	AccessTTL         uint64
	PuzzleTTL         uint64
}

// Server is the HTTP adapter. It owns no puzzle state itself — the
// builder and verifier carry their own access tracker / replay store —
// but it owns the listener lifecycle.
type Server struct {
	cfg        Config
	builder    *puzzle.Builder
	verifier   *puzzle.Verifier
	apiKey     []byte
	ipStrategy realclientip.Strategy
	logger     *slog.Logger
	metrics    *metrics
	httpServer *http.Server
}

// NewServer wires a Server around the given builder, verifier, and
// shared API key, registering Prometheus collectors against reg.
func NewServer(cfg Config, builder *puzzle.Builder, verifier *puzzle.Verifier, apiKey []byte, logger *slog.Logger, reg *prometheus.Registry) *Server {
	s := &Server{
		cfg:        cfg,
		builder:    builder,
		verifier:   verifier,
		apiKey:     apiKey,
		ipStrategy: newIPStrategy(cfg.TrustForwardedFor),
		logger:     logger,
		metrics:    newMetrics(reg),
	}

	mux := http.NewServeMux()
	chain := alice.New(s.withLogging, s.withCORS)

	mux.Handle("GET /build-puzzle", chain.ThenFunc(s.handleBuildPuzzle))
	mux.Handle("POST /verify-puzzle-result", chain.ThenFunc(s.handleVerifyPuzzleResult))
	mux.Handle("GET /healthz", http.HandlerFunc(s.handleHealthz))
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.BindPort),
		Handler: mux,
	}

	return s
}

// withCORS wraps the demo-form-facing endpoints with permissive CORS, the
// only place browsers call this service from directly.
func (s *Server) withCORS(next http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(next)
}

// withLogging logs one structured line per request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

// ListenAndServe starts the HTTP server and blocks until ctx is canceled,
// at which point it performs a graceful shutdown bounded by
// cfg.ShutdownTimeout, mirroring the teacher's shutdown-channel discipline
// adapted to http.Server's native Shutdown method.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("shutdown did not complete cleanly", "error", err)
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}
