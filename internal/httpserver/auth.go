// internal/httpserver/auth.go
//
// Agent accounts and identity.
// Responsibilities:
//   - /agent/signup, /agent/login, /agent/logout, /agent/me.
//   - bcrypt password hashing, HS256 JWTs in a cookie or bearer header.
//   - Optional auth for game routes; anonymous cookie for guests.
//   - Agent mission counters (missions_run, missions_won).

package httpserver

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/typehack/internal/store"
)

const anonCookieName = "typehack_anon"

var (
	errNameTaken         = errors.New("name taken")
	errInvalidPassphrase = errors.New("passphrase must be 8-100 chars")
)

type signupReq struct {
	Name       string `json:"name"`
	Passphrase string `json:"passphrase"`
}

type loginReq struct {
	Name       string `json:"name"`
	Passphrase string `json:"passphrase"`
}

// authUser is the agent attached to a request context.
type authUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

func userFrom(ctx context.Context) *authUser {
	u, _ := ctx.Value(ctxUserKey{}).(*authUser)
	return u
}

func (s *Server) mountAgentRoutes() {
	s.r.Post("/agent/signup", s.handleSignup)
	s.r.Post("/agent/login", s.handleLogin)
	s.r.Post("/agent/logout", s.handleLogout)

	s.r.With(s.requireAuth()).Get("/agent/me", func(w http.ResponseWriter, r *http.Request) {
		me := userFrom(r.Context())
		a, err := s.findAgentByID(r.Context(), me.ID)
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":          a.ID,
			"name":        a.Name,
			"createdAt":   a.CreatedAt,
			"missionsRun": a.MissionsRun,
			"missionsWon": a.MissionsWon,
		})
	})
}

// handleSignup registers an agent. The guest's current progress is carried
// over under the new name and saved.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body signupReq
	if err := decode(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	a, err := s.createAgent(r.Context(), body.Name, body.Passphrase)
	switch {
	case errors.Is(err, errNameTaken):
		writeError(w, http.StatusConflict, "name_taken")
		return
	case errors.Is(err, store.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "invalid_name")
		return
	case errors.Is(err, errInvalidPassphrase):
		writeError(w, http.StatusBadRequest, "invalid_passphrase")
		return
	case err != nil:
		log.Error().Err(err).Str("agent", body.Name).Msg("create agent")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	tok, exp, err := s.signJWT(a.ID, a.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setAuthCookie(w, tok, exp)
	if err := s.adoptGuest(r.Context(), s.ensureAnonID(w, r), a.Name); err != nil {
		log.Warn().Err(err).Str("agent", a.Name).Msg("carry over guest progress")
	}
	log.Info().Str("agent", a.Name).Msg("agent registered")
	writeJSON(w, http.StatusOK, map[string]any{"id": a.ID, "name": a.Name, "createdAt": a.CreatedAt})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if err := decode(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	a, err := s.findAgentByName(r.Context(), strings.TrimSpace(body.Name))
	if err != nil || !checkPassword(a.PasswordHash, body.Passphrase) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	tok, exp, err := s.signJWT(a.ID, a.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setAuthCookie(w, tok, exp)
	writeJSON(w, http.StatusOK, map[string]any{"id": a.ID, "name": a.Name})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// --------------------------- optional auth ---------------------------------

// withOptionalAuth decorates requests with the agent if a valid JWT is present.
// It never 401s; guests fall through as anonymous players.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u := s.authenticate(r); u != nil {
				r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth enforces a valid JWT and injects authUser into request context.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := s.authenticate(r)
			if u == nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u)))
		})
	}
}

// authenticate resolves the request's token to a live agent, or nil.
func (s *Server) authenticate(r *http.Request) *authUser {
	tok := s.bearerOrCookie(r)
	if tok == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !t.Valid {
		return nil
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return nil
	}
	// Ensure agent still exists
	a, err := s.findAgentByID(r.Context(), id)
	if err != nil {
		return nil
	}
	return &authUser{ID: a.ID, Name: a.Name}
}

// ensureAnonID returns an existing anon cookie or sets a new one.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := genID()
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Production(),
		SameSite: s.sameSite(),
		Expires:  s.now().Add(180 * 24 * time.Hour),
	})
	return id
}

// ------------------------ agent rows ---------------------------------------

// agentRow matches the agents table shape.
type agentRow struct {
	ID           string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	MissionsRun  int
	MissionsWon  int
}

// createAgent validates input, checks uniqueness, hashes the passphrase, and
// inserts a new agent.
func (s *Server) createAgent(ctx context.Context, name, pass string) (*agentRow, error) {
	name = strings.TrimSpace(name)
	if err := validateSignup(name, pass); err != nil {
		return nil, err
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM agents WHERE lower(name)=lower(?)`, name).Scan(&exists)
	switch {
	case err == nil:
		return nil, errNameTaken
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("lookup agent: %w", err)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC().Format(time.RFC3339)
	id := genID()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO agents (id, name, password_hash, created_at) VALUES (?,?,?,?)`,
		id, name, string(h), now); err != nil {
		if isUniqueViolation(err) {
			return nil, errNameTaken
		}
		return nil, fmt.Errorf("insert agent: %w", err)
	}
	return &agentRow{ID: id, Name: name, PasswordHash: string(h), CreatedAt: mustParse(now)}, nil
}

func (s *Server) findAgentByName(ctx context.Context, name string) (*agentRow, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, password_hash, created_at, missions_run, missions_won
	                                  FROM agents WHERE lower(name)=lower(?)`, name)
	return scanAgent(row)
}

func (s *Server) findAgentByID(ctx context.Context, id string) (*agentRow, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, password_hash, created_at, missions_run, missions_won
	                                  FROM agents WHERE id=?`, id)
	return scanAgent(row)
}

func scanAgent(row *sql.Row) (*agentRow, error) {
	var a agentRow
	var created string
	if err := row.Scan(&a.ID, &a.Name, &a.PasswordHash, &created, &a.MissionsRun, &a.MissionsWon); err != nil {
		return nil, err
	}
	a.CreatedAt = mustParse(created)
	return &a, nil
}

// bumpStats counts a finished campaign mission for the agent.
func (s *Server) bumpStats(ctx context.Context, name string, won bool) error {
	won1 := 0
	if won {
		won1 = 1
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE agents SET missions_run = missions_run + 1, missions_won = missions_won + ? WHERE lower(name)=lower(?)`,
		won1, name)
	return err
}

// mustParse parses RFC3339 timestamps; on error returns zero time.
func mustParse(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// validateSignup enforces agent name and passphrase rules. Names double as
// save file names, so they follow store.ValidName.
func validateSignup(name, pass string) error {
	if err := store.ValidName(name); err != nil {
		return err
	}
	if len(pass) < 8 || len(pass) > 100 {
		return errInvalidPassphrase
	}
	return nil
}

// isUniqueViolation reports a UNIQUE constraint failure, e.g. two signups
// racing for the same name.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

// genID creates a 22‑char URL‑safe, crypto‑random identifier (no padding).
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ------------------------------ JWT & cookies ------------------------------

// signJWT creates an HS256 JWT with id/name and the configured expiry.
func (s *Server) signJWT(id, name string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(time.Duration(s.cfg.JWTExpiresDays) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   id,
		"name": name,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

func (s *Server) sameSite() http.SameSite {
	if s.cfg.Production() {
		return http.SameSiteNoneMode // required for third‑party contexts when Secure
	}
	return http.SameSiteLaxMode
}

func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Production(),
		SameSite: s.sameSite(),
		Expires:  exp,
	})
}

func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Production(),
		SameSite: s.sameSite(),
		MaxAge:   -1,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}
