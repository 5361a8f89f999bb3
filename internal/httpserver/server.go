// internal/httpserver/server.go
//
// HTTP server wiring for the TypeHack backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Agent endpoints: /agent/* (signup, login, logout, me).
//   - Progress endpoints (optional auth): /progress/*, /missions, /achievements.
//   - Mission endpoints (optional auth): /mission/start, /mission/keys, /mission/{id}.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Background sweep of idle runs, guests, limiters and stale daily
//     sessions, plus save-on-exit of player progress.
//
// Notes:
//   - CORS is origin‑aware and credentials‑enabled (so cookies work).
//   - Guests play under an anonymous cookie with an unsaved default profile;
//     agents are identified by a JWT and their progress is persisted.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/typehack/internal/config"
	"github.com/robalobadob/typehack/internal/daily"
	"github.com/robalobadob/typehack/internal/mission"
	"github.com/robalobadob/typehack/internal/progress"
	"github.com/robalobadob/typehack/internal/store"
	"github.com/robalobadob/typehack/internal/words"
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Runs    store.RunStore
	Players store.PlayerStore
	DB      *sql.DB
	Words   *words.Library
	Now     func() time.Time // defaults to time.Now
}

// Server bundles the router, stores and per-player state.
type Server struct {
	r       *chi.Mux
	cfg     config.Config
	runs    store.RunStore
	players store.PlayerStore
	db      *sql.DB
	words   *words.Library
	now     func() time.Time
	limits  *limiter
	dd      *dailyServer

	mu     sync.Mutex                      // guards roster, seen and run mutation
	roster map[string]*progress.PlayerData // keyed by identity.Key
	seen   map[string]time.Time            // guest key -> last request
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, d Deps) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		cfg:     cfg,
		runs:    d.Runs,
		players: d.Players,
		db:      d.DB,
		words:   d.Words,
		now:     d.Now,
		limits:  newLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		roster:  make(map[string]*progress.PlayerData),
		seen:    make(map[string]time.Time),
	}
	if s.now == nil {
		s.now = time.Now
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "typehack",
			"endpoints": []string{"/health", "POST /mission/start", "POST /mission/keys", "/progress", "/daily/*", "/agent/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]int{"perLevel": s.words.Stats()})
	})

	s.mountAgentRoutes()

	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		s.mountProgress(r)
		s.mountMission(r)
		s.mountDaily(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Run serves HTTP on addr until ctx is cancelled, then shuts down gracefully
// and saves the progress of every player with autosave enabled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go s.sweepLoop(ctx, time.Minute)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received, shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("http server shutdown")
		}
		s.SaveOnExit(shutdownCtx)
	}
	return nil
}

// sweepLoop periodically runs sweep until ctx is done.
func (s *Server) sweepLoop(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

// sweep drops runs, guests and rate limiters idle for longer than the run
// TTL, and daily sessions from earlier dates.
func (s *Server) sweep(ctx context.Context) {
	now := s.now()
	cutoff := now.Add(-s.cfg.RunTTL)

	limiters := s.limits.prune(cutoff)

	s.mu.Lock()
	runs := s.runs.Sweep(ctx, cutoff)
	guests := s.pruneGuestsLocked(cutoff)
	sessions := s.dd.pruneLocked(daily.DateKey(now))
	s.mu.Unlock()

	if runs+limiters+guests+sessions > 0 {
		log.Debug().
			Int("runs", runs).
			Int("guests", guests).
			Int("limiters", limiters).
			Int("dailySessions", sessions).
			Msg("swept idle state")
	}
}

// rules returns the mission limits for this server.
func (s *Server) rules() mission.Rules {
	r := mission.DefaultRules()
	if t := s.cfg.MissionTime(); t > 0 {
		r.Allotted = t
	}
	return r
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(v)
}
