// Package httpapi serves match-3 games over HTTP/JSON. Each game is an
// independent engine held in memory; activations arrive as POST requests and
// run to completion before the response is written.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vovakirdan/tui-match3/internal/config"
	"github.com/vovakirdan/tui-match3/internal/journal"
)

// Config holds HTTP server settings.
type Config struct {
	Address        string
	RequestTimeout time.Duration
	// IdleTTL drops games nobody touched for this long. Zero keeps them
	// until deleted.
	IdleTTL time.Duration
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Address:        ":8080",
		RequestTimeout: 10 * time.Second,
		IdleTTL:        time.Hour,
	}
}

// Server bundles the router, the running games and the optional journal.
type Server struct {
	cfg      Config
	settings config.Match3Config
	store    journal.Writer
	logger   *log.Logger
	r        *chi.Mux
	games    *games
	http     *http.Server
}

// New constructs a Server, installs middleware and registers routes.
// store may be nil to serve games without a journal.
func New(cfg Config, settings config.Match3Config, store journal.Writer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}

	s := &Server{
		cfg:      cfg,
		settings: settings,
		store:    store,
		logger:   logger,
		r:        chi.NewRouter(),
		games:    newGames(),
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(s.requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(cfg.RequestTimeout))
	s.r.Use(jsonContentType)

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "games": s.games.len()})
	})
	s.r.Get("/api/presets", s.handlePresets)

	s.r.Route("/api/games", func(r chi.Router) {
		r.Post("/", s.handleNewGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetGame)
			r.Delete("/", s.handleDeleteGame)
			r.Post("/activate", s.handleActivate)
			r.Post("/restart", s.handleRestart)
			r.Get("/hint", s.handleHint)
		})
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	})

	return s
}

// Router exposes the router (used by tests).
func (s *Server) Router() chi.Router {
	return s.r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// and closes every open game.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", s.cfg.Address)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if s.cfg.IdleTTL > 0 {
		go s.sweep(ctx, s.cfg.IdleTTL)
	}

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.http.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close ends every running game and its journal session.
func (s *Server) Close() {
	for _, g := range s.games.drain() {
		s.closeGame(g)
	}
}

// sweep drops idle games every ttl/4 until ctx is done.
func (s *Server) sweep(ctx context.Context, ttl time.Duration) {
	ticker := time.NewTicker(max(ttl/4, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, g := range s.games.expire(now.Add(-ttl)) {
				s.logger.Info("game expired", "game", g.id)
				s.closeGame(g)
			}
		}
	}
}

func (s *Server) closeGame(g *game) {
	if err := g.close(); err != nil {
		s.logger.Warn("journal incomplete", "game", g.id, "error", err)
	}
}

// requestLogger logs one line per request with the chi request ID.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
