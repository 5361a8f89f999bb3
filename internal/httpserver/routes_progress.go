// internal/httpserver/routes_progress.go
//
// Player progress endpoints:
//   - GET  /progress          → current PlayerData and summary
//   - POST /progress/save     → write the save file (agents only)
//   - POST /progress/load     → re-read the save file (agents only)
//   - POST /progress/reset    → new game: clear ratings and achievements
//   - POST /progress/autosave → toggle save-on-exit
//   - GET  /missions          → mission select board
//   - GET  /achievements      → achievement badges

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/typehack/internal/progress"
)

type progressRes struct {
	Player     string              `json:"player"`
	Registered bool                `json:"registered"`
	Cleared    int                 `json:"cleared"`
	Progress   progress.PlayerData `json:"progress"`
}

type autosaveReq struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) mountProgress(r chi.Router) {
	r.Get("/progress", s.handleProgress)
	r.Post("/progress/save", s.handleSave)
	r.Post("/progress/load", s.handleLoad)
	r.Post("/progress/reset", s.handleReset)
	r.Post("/progress/autosave", s.handleAutosave)

	r.Get("/missions", func(w http.ResponseWriter, r *http.Request) {
		p, err := s.withPlayer(r.Context(), s.identify(w, r), nil)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load_failed")
			return
		}
		writeJSON(w, http.StatusOK, p.Board())
	})
	r.Get("/achievements", func(w http.ResponseWriter, r *http.Request) {
		p, err := s.withPlayer(r.Context(), s.identify(w, r), nil)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load_failed")
			return
		}
		writeJSON(w, http.StatusOK, p.Badges())
	})
}

func newProgressRes(id identity, p progress.PlayerData) progressRes {
	return progressRes{Player: p.PlayerName, Registered: id.Registered, Cleared: p.Cleared(), Progress: p}
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id := s.identify(w, r)
	p, err := s.withPlayer(r.Context(), id, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}
	writeJSON(w, http.StatusOK, newProgressRes(id, p))
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	id := s.identify(w, r)
	if !id.Registered {
		writeError(w, http.StatusConflict, "not_registered")
		return
	}
	_, err := s.withPlayer(r.Context(), id, func(p *progress.PlayerData) error {
		return s.players.Save(r.Context(), p)
	})
	if err != nil {
		log.Error().Err(err).Str("player", id.Name).Msg("save progress")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Progress saved, Agent " + id.Name + "."})
}

// handleLoad replaces the in-memory data with what is on disk.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	id := s.identify(w, r)
	if !id.Registered {
		writeError(w, http.StatusConflict, "not_registered")
		return
	}
	loaded, err := s.players.Load(r.Context(), id.Name)
	if err != nil {
		log.Error().Err(err).Str("player", id.Name).Msg("load progress")
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}
	s.mu.Lock()
	s.roster[id.Key] = loaded
	p := *loaded
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, newProgressRes(id, p))
}

// handleReset starts a new game. Agents' cleared progress is saved at once.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := s.identify(w, r)
	p, err := s.withPlayer(r.Context(), id, func(p *progress.PlayerData) error {
		p.Reset()
		if id.Registered {
			return s.players.Save(r.Context(), p)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("player", id.Name).Msg("reset progress")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	log.Info().Str("player", id.Name).Msg("new game")
	writeJSON(w, http.StatusOK, newProgressRes(id, p))
}

func (s *Server) handleAutosave(w http.ResponseWriter, r *http.Request) {
	var body autosaveReq
	if err := decode(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	id := s.identify(w, r)
	p, err := s.withPlayer(r.Context(), id, func(p *progress.PlayerData) error {
		p.SaveOnDestroy = body.Enabled
		return nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}
	writeJSON(w, http.StatusOK, newProgressRes(id, p))
}
