// internal/httpserver/players.go
//
// Player roster: the PlayerData each identity is playing with.
//
// Agents' data is loaded from the PlayerStore on first use and written back
// on save, on mission completion, and at shutdown when autosave is on.
// Guests get an in-memory default profile that is never persisted, and are
// forgotten once idle for longer than the run TTL.

package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/typehack/internal/progress"
)

// identity is who a game request acts for.
type identity struct {
	Key        string // roster and run owner key
	Name       string // agent name, or progress.DefaultName for guests
	Registered bool
}

// Display is the name shown on leaderboards.
func (id identity) Display() string {
	if id.Registered {
		return id.Name
	}
	short := strings.TrimPrefix(id.Key, "anon:")
	if len(short) > 6 {
		short = short[:6]
	}
	return "guest-" + short
}

func agentKey(name string) string { return "agent:" + strings.ToLower(name) }

// identify returns the agent behind the request, or the guest's anonymous identity.
func (s *Server) identify(w http.ResponseWriter, r *http.Request) identity {
	if u := userFrom(r.Context()); u != nil {
		return identity{Key: agentKey(u.Name), Name: u.Name, Registered: true}
	}
	id := identity{Key: "anon:" + s.ensureAnonID(w, r), Name: progress.DefaultName}
	s.mu.Lock()
	s.seen[id.Key] = s.now()
	s.mu.Unlock()
	return id
}

// pruneGuestsLocked forgets guests not seen since cutoff. Callers hold s.mu.
func (s *Server) pruneGuestsLocked(cutoff time.Time) int {
	n := 0
	for key, last := range s.seen {
		if last.Before(cutoff) {
			delete(s.seen, key)
			delete(s.roster, key)
			n++
		}
	}
	return n
}

// playerLocked returns the live PlayerData for id. Callers hold s.mu.
func (s *Server) playerLocked(ctx context.Context, id identity) (*progress.PlayerData, error) {
	if p, ok := s.roster[id.Key]; ok {
		return p, nil
	}
	p := progress.New()
	if id.Registered {
		loaded, err := s.players.Load(ctx, id.Name)
		if err != nil {
			return nil, err
		}
		p = loaded
	}
	s.roster[id.Key] = p
	return p, nil
}

// withPlayer runs fn on id's data under the roster lock and returns a copy
// of the result.
func (s *Server) withPlayer(ctx context.Context, id identity, fn func(p *progress.PlayerData) error) (progress.PlayerData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.playerLocked(ctx, id)
	if err != nil {
		return progress.PlayerData{}, err
	}
	if fn != nil {
		if err := fn(p); err != nil {
			return *p, err
		}
	}
	return *p, nil
}

// adoptGuest moves the guest's progress to a newly registered agent and
// saves it. A guest who has not played yet picks up any existing save.
func (s *Server) adoptGuest(ctx context.Context, anonID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	guestKey := "anon:" + anonID
	guest, ok := s.roster[guestKey]
	delete(s.roster, guestKey)
	delete(s.seen, guestKey)

	if !ok || guest.Cleared() == 0 {
		p, err := s.players.Load(ctx, name)
		if err != nil {
			return err
		}
		s.roster[agentKey(name)] = p
		return nil
	}

	p := progress.Named(name)
	p.LevelStatus = guest.LevelStatus
	p.Achievements = guest.Achievements
	p.SaveOnDestroy = guest.SaveOnDestroy
	s.roster[agentKey(name)] = p
	return s.players.Save(ctx, p)
}

// SaveOnExit writes every registered player with autosave enabled.
func (s *Server) SaveOnExit(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := 0
	for key, p := range s.roster {
		if !strings.HasPrefix(key, "agent:") || !p.SaveOnDestroy || !p.Registered() {
			continue
		}
		if err := s.players.Save(ctx, p); err != nil {
			log.Error().Err(err).Str("player", p.PlayerName).Msg("save on exit")
			continue
		}
		saved++
	}
	log.Info().Int("players", saved).Msg("progress saved on exit")
}
