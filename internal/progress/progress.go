// internal/progress/progress.go
//
// Player progression: which missions are cleared, with how many stars, and
// which achievement badges are earned.
//
// Rules:
//   - Mission 1 is always unlocked; mission n needs mission n-1 cleared.
//   - A level's rating only ever goes up.
//   - Achievements are checked after every completed mission and never revoked
//     except by Reset.
package progress

import (
	"errors"
	"fmt"
)

const (
	// LevelCount is the number of campaign missions.
	LevelCount = 15
	// AchievementCount is the number of achievement slots.
	AchievementCount = 10
	// DefaultName is the placeholder for a player who has not registered.
	DefaultName = "Player-1"
)

// ErrLevelRange is returned for levels outside 1..LevelCount.
var ErrLevelRange = errors.New("level out of range")

// PlayerData is everything persisted for one player.
// JSON keys match the save file format.
type PlayerData struct {
	PlayerName    string                 `json:"playerName"`
	LevelStatus   [LevelCount]int        `json:"levelStatus"`
	Achievements  [AchievementCount]bool `json:"achievements"`
	SaveOnDestroy bool                   `json:"saveOnDestroy"`
}

// New returns data for an unregistered player.
func New() *PlayerData {
	return Named(DefaultName)
}

// Named returns fresh data for the given player.
func Named(name string) *PlayerData {
	return &PlayerData{PlayerName: name, SaveOnDestroy: true}
}

// Registered reports whether the player has given a name of their own.
func (p *PlayerData) Registered() bool {
	return p.PlayerName != "" && p.PlayerName != DefaultName
}

// Stars returns the rating for a 1-based level, 0 if out of range.
func (p *PlayerData) Stars(level int) int {
	if level < 1 || level > LevelCount {
		return 0
	}
	return p.LevelStatus[level-1]
}

// Unlocked reports whether the player may start the given level.
func (p *PlayerData) Unlocked(level int) bool {
	if level < 1 || level > LevelCount {
		return false
	}
	return level == 1 || p.LevelStatus[level-2] > 0
}

// RecordMission stores the rating for a completed mission and returns the
// achievements it unlocked.
func (p *PlayerData) RecordMission(level, stars int) ([]Achievement, error) {
	if level < 1 || level > LevelCount {
		return nil, fmt.Errorf("record level %d: %w", level, ErrLevelRange)
	}
	if stars < 1 {
		stars = 1
	}
	if stars > 3 {
		stars = 3
	}
	if stars > p.LevelStatus[level-1] {
		p.LevelStatus[level-1] = stars
	}
	return p.checkAchievements(level), nil
}

// Reset clears every rating and achievement, keeping the player's name and
// autosave preference.
func (p *PlayerData) Reset() {
	p.LevelStatus = [LevelCount]int{}
	p.Achievements = [AchievementCount]bool{}
}

// Cleared counts missions completed at least once.
func (p *PlayerData) Cleared() int {
	n := 0
	for _, s := range p.LevelStatus {
		if s > 0 {
			n++
		}
	}
	return n
}

// Normalize clamps ratings into 0..3. Save files are edited by hand often
// enough that loaders call this before trusting the data.
func (p *PlayerData) Normalize() {
	for i, s := range p.LevelStatus {
		switch {
		case s < 0:
			p.LevelStatus[i] = 0
		case s > 3:
			p.LevelStatus[i] = 3
		}
	}
}
