// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start today's mission (creates or reuses session)
//   - POST /daily/keys        → type keys into today's run
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// Everyone gets the same level and keywords on a given date (derived from
// date + salt). A completed run is recorded once per player per day; a
// failed run may be retried. Daily runs never touch campaign progress.

package httpserver

import (
	"context"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/typehack/internal/daily"
	"github.com/robalobadob/typehack/internal/mission"
	"github.com/robalobadob/typehack/internal/words"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	sessions map[string]*dailySession // keyed by player|date, guarded by srv.mu
}

// dailySession ties a player's daily attempt to its run.
type dailySession struct {
	RunID    string
	Player   string
	Date     string
	Finished bool
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	s.dd = &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     s.cfg.DailySalt,
		sessions: make(map[string]*dailySession),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.dd.handleNew)
		r.With(s.rateLimit).Post("/keys", s.dd.handleKeys)
		r.Get("/leaderboard", s.dd.handleLeaderboard)
	})
}

// -----------------------------------------------------------------------------
// /daily/new

// newRes is returned by /daily/new.
type newRes struct {
	Date   string            `json:"date"`
	Level  int               `json:"level"`
	Played bool              `json:"played"`
	Run    *mission.Snapshot `json:"run,omitempty"`
}

// handleNew creates or reuses today's run.
// - If the player already has a result for today → Played=true.
// - Otherwise reuse the active session run or start a new one. The session
//   lock is held throughout so one player never gets two runs for a date.
// - A completed run whose result failed to record is recorded again.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	s := d.srv
	id := s.identify(w, r)
	now := s.now()
	date := daily.DateKey(now)
	level := daily.Level(now, d.salt, words.Levels)
	player := id.Display()

	played, err := d.store.AlreadyPlayed(r.Context(), player, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if played {
		writeJSON(w, http.StatusOK, newRes{Date: date, Level: level, Played: true})
		return
	}

	key := player + "|" + date
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := d.sessions[key]; ok {
		if sess.Finished {
			writeJSON(w, http.StatusOK, newRes{Date: date, Level: level, Played: true})
			return
		}
		if run, err := s.runs.Get(r.Context(), sess.RunID); err == nil {
			// A completed run whose result was not recorded is finished again.
			if _, ended := s.applyKeys(run, ""); ended || run.Status == mission.StatusComplete {
				d.finish(r.Context(), id, run)
				_ = s.runs.Save(r.Context(), run)
			}
			switch {
			case sess.Finished:
				writeJSON(w, http.StatusOK, newRes{Date: date, Level: level, Played: true})
				return
			case run.Active():
				snap := run.Snapshot()
				writeJSON(w, http.StatusOK, newRes{Date: date, Level: level, Run: &snap})
				return
			case run.Status == mission.StatusComplete:
				writeError(w, http.StatusInternalServerError, "db_error")
				return
			}
		}
		delete(d.sessions, key)
	}

	keywords := s.words.MissionKeywords(level, words.Seeded(daily.Seed(now, d.salt)))
	run, err := s.newRun(r.Context(), id, mission.ModeDaily, level, keywords)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "start_failed")
		return
	}
	d.sessions[key] = &dailySession{RunID: run.ID, Player: player, Date: date}
	snap := run.Snapshot()

	log.Debug().Str("run", run.ID).Str("player", player).Str("date", date).Int("level", level).Msg("daily started")
	writeJSON(w, http.StatusOK, newRes{Date: date, Level: level, Run: &snap})
}

// -----------------------------------------------------------------------------
// /daily/keys

// handleKeys types keys into the player's daily run and records the result
// when it completes.
func (d *dailyServer) handleKeys(w http.ResponseWriter, r *http.Request) {
	s := d.srv
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
	run, ok := s.ownedRun(w, r, id, body.RunID, mission.ModeDaily)
	if !ok {
		return
	}

	s.mu.Lock()
	ks, ended := s.applyKeys(run, body.Keys)
	if ended {
		d.finish(r.Context(), id, run)
	}
	res := keysRes{Run: run.Snapshot(), Keystrokes: ks}
	s.mu.Unlock()

	if res.Keystrokes == nil {
		res.Keystrokes = []mission.Keystroke{}
	}
	_ = s.runs.Save(r.Context(), run)
	writeJSON(w, http.StatusOK, res)
}

// finish closes the session of an ended daily run. Completed runs are
// persisted; failed ones free the slot for another attempt. Callers hold srv.mu.
func (d *dailyServer) finish(ctx context.Context, id identity, run *mission.Run) {
	sess := d.sessionFor(run.ID)
	if sess == nil {
		log.Warn().Str("run", run.ID).Msg("daily run without session")
		return
	}
	key := sess.Player + "|" + sess.Date
	if run.Status != mission.StatusComplete {
		delete(d.sessions, key)
		log.Info().Str("player", sess.Player).Str("date", sess.Date).Msg("daily failed")
		return
	}
	err := d.store.InsertResult(ctx, daily.Result{
		Player:      sess.Player,
		Date:        sess.Date,
		Level:       run.Level,
		Stars:       run.Stars,
		Errors:      run.Errors,
		RemainingMs: run.Remaining.Milliseconds(),
		WPM:         run.WPM(),
	})
	if err != nil {
		// The session stays unfinished; /daily/new records it again.
		log.Error().Err(err).Str("player", sess.Player).Msg("record daily result")
		return
	}
	sess.Finished = true
	log.Info().
		Str("player", sess.Player).
		Bool("registered", id.Registered).
		Str("date", sess.Date).
		Int("stars", run.Stars).
		Msg("daily complete")
}

// pruneLocked drops sessions dated before today. Callers hold srv.mu.
func (d *dailyServer) pruneLocked(today string) int {
	n := 0
	for key, sess := range d.sessions {
		if sess.Date < today {
			delete(d.sessions, key)
			n++
		}
	}
	return n
}

func (d *dailyServer) sessionFor(runID string) *dailySession {
	for _, sess := range d.sessions {
		if sess.RunID == runID {
			return sess
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string         `json:"date"`
	Top  []daily.Result `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.srv.now())
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		log.Error().Err(err).Msg("daily leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
