// internal/httpserver/routes_mission.go
//
// Campaign mission endpoints:
//   - POST /mission/start {level}       → new run for an unlocked level
//   - POST /mission/keys  {runId, keys} → type keys into a run
//   - GET  /mission/{id}                → current run state
//
// The mission clock runs on wall time: every request first advances the run
// by the time elapsed since its last update. Finishing a mission records
// the rating and achievements; agents' progress is saved right away.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/typehack/internal/mission"
	"github.com/robalobadob/typehack/internal/progress"
	"github.com/robalobadob/typehack/internal/store"
	"github.com/robalobadob/typehack/internal/words"
)

// maxKeysPerPost bounds how many runes one /keys request may carry.
const maxKeysPerPost = 256

type startReq struct {
	Level int `json:"level"`
}

type keysReq struct {
	RunID string `json:"runId"`
	Keys  string `json:"keys"`
}

type keysRes struct {
	Run        mission.Snapshot    `json:"run"`
	Keystrokes []mission.Keystroke `json:"keystrokes"`
	Unlocked   []progress.Badge    `json:"unlocked,omitempty"`
}

func (s *Server) mountMission(r chi.Router) {
	r.Post("/mission/start", s.handleStart)
	r.With(s.rateLimit).Post("/mission/keys", s.handleKeys)
	r.Get("/mission/{id}", s.handleGetRun)
}

// handleStart creates a run for the requested level.
// - 400 invalid_level outside 1..15, 403 mission_locked if not yet unlocked.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var body startReq
	if err := decode(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if body.Level < 1 || body.Level > progress.LevelCount {
		writeError(w, http.StatusBadRequest, "invalid_level")
		return
	}
	id := s.identify(w, r)
	p, err := s.withPlayer(r.Context(), id, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}
	if !p.Unlocked(body.Level) {
		writeError(w, http.StatusForbidden, "mission_locked")
		return
	}

	rng, err := words.NewRand()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "rng_failed")
		return
	}
	run, err := s.newRun(r.Context(), id, mission.ModeCampaign, body.Level, s.words.MissionKeywords(body.Level, rng))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "start_failed")
		return
	}
	log.Debug().Str("run", run.ID).Str("player", id.Name).Int("level", run.Level).Msg("mission started")
	writeJSON(w, http.StatusOK, run.Snapshot())
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	var body keysReq
	if err := decode(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if utf8.RuneCountInString(body.Keys) > maxKeysPerPost {
		writeError(w, http.StatusBadRequest, "too_many_keys")
		return
	}
	id := s.identify(w, r)
	run, ok := s.ownedRun(w, r, id, body.RunID, mission.ModeCampaign)
	if !ok {
		return
	}

	s.mu.Lock()
	ks, ended := s.applyKeys(run, body.Keys)
	var unlocked []progress.Badge
	if ended {
		unlocked = s.finishCampaign(r.Context(), id, run)
	}
	res := keysRes{Run: run.Snapshot(), Keystrokes: ks, Unlocked: unlocked}
	s.mu.Unlock()

	if res.Keystrokes == nil {
		res.Keystrokes = []mission.Keystroke{}
	}
	_ = s.runs.Save(r.Context(), run)
	writeJSON(w, http.StatusOK, res)
}

// handleGetRun reports the run, failing it if its time ran out meanwhile.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := s.identify(w, r)
	runID := chi.URLParam(r, "id")
	run, err := s.runs.Get(r.Context(), runID)
	if err != nil || run.Owner != id.Key {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	s.mu.Lock()
	if _, ended := s.applyKeys(run, ""); ended {
		switch run.Mode {
		case mission.ModeCampaign:
			s.finishCampaign(r.Context(), id, run)
		case mission.ModeDaily:
			s.dd.finish(r.Context(), id, run)
		}
	}
	snap := run.Snapshot()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, snap)
}

// ------------------------------- helpers -----------------------------------

// newRun builds and stores a fresh run owned by id.
func (s *Server) newRun(ctx context.Context, id identity, mode mission.Mode, level int, keywords []string) (*mission.Run, error) {
	run, err := mission.New(level, keywords, s.rules())
	if err != nil {
		return nil, err
	}
	run.ID = uuid.NewString()
	run.Owner = id.Key
	run.Mode = mode
	run.UpdatedAt = s.now()
	if err := s.runs.Save(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// ownedRun loads a run of the given mode belonging to id, writing the error
// response itself when there is none.
func (s *Server) ownedRun(w http.ResponseWriter, r *http.Request, id identity, runID string, mode mission.Mode) (*mission.Run, bool) {
	if runID == "" {
		writeError(w, http.StatusBadRequest, "missing_run_id")
		return nil, false
	}
	run, err := s.runs.Get(r.Context(), runID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && (run.Owner != id.Key || run.Mode != mode)) {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return nil, false
	}
	return run, true
}

// applyKeys advances the run clock to now, types keys, and reports whether
// this call ended the run. Callers hold s.mu.
func (s *Server) applyKeys(run *mission.Run, keys string) ([]mission.Keystroke, bool) {
	wasActive := run.Active()
	now := s.now()
	run.Tick(now.Sub(run.UpdatedAt))
	run.UpdatedAt = now
	ks := run.TypeString(keys)
	return ks, wasActive && !run.Active()
}

// finishCampaign records a finished campaign run and returns the badges it
// unlocked. Callers hold s.mu.
func (s *Server) finishCampaign(ctx context.Context, id identity, run *mission.Run) []progress.Badge {
	won := run.Status == mission.StatusComplete
	logEvt := log.Info().
		Str("player", id.Name).
		Int("level", run.Level).
		Str("status", string(run.Status)).
		Int("stars", run.Stars).
		Int("errors", run.Errors).
		Float64("wpm", run.WPM())

	if id.Registered {
		if err := s.bumpStats(ctx, id.Name, won); err != nil {
			log.Warn().Err(err).Str("player", id.Name).Msg("bump agent stats")
		}
	}
	if !won {
		logEvt.Msg("mission failed")
		return nil
	}

	p, err := s.playerLocked(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("player", id.Name).Msg("load progress")
		return nil
	}
	newly, err := p.RecordMission(run.Level, run.Stars)
	if err != nil {
		log.Error().Err(err).Msg("record mission")
		return nil
	}
	if id.Registered {
		if err := s.players.Save(ctx, p); err != nil {
			log.Error().Err(err).Str("player", id.Name).Msg("save progress")
		}
	}
	logEvt.Int("achievements", len(newly)).Msg("mission complete")

	return lo.Map(newly, func(a progress.Achievement, _ int) progress.Badge {
		return progress.Badge{ID: a, Name: a.Name(), Earned: true}
	})
}
