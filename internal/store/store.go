// Package store persists player progress and holds active mission runs.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/robalobadob/typehack/internal/progress"
)

var (
	// ErrNotFound is returned when a run ID is unknown.
	ErrNotFound = errors.New("not found")
	// ErrInvalidName is returned for player names that cannot key a save.
	ErrInvalidName = errors.New("invalid player name")
)

// PlayerStore loads and saves PlayerData by player name.
//
// Load never fails for an unknown player: it returns fresh data carrying
// the requested name.
type PlayerStore interface {
	Load(ctx context.Context, name string) (*progress.PlayerData, error)
	Save(ctx context.Context, p *progress.PlayerData) error
}

// ValidName checks that a player name is 3–24 letters, digits or
// underscores, which also keeps it safe to use in a file name.
func ValidName(name string) error {
	if len(name) < 3 || len(name) > 24 {
		return fmt.Errorf("%w: must be 3-24 chars", ErrInvalidName)
	}
	for _, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return fmt.Errorf("%w: letters, numbers, underscore only", ErrInvalidName)
		}
	}
	return nil
}
