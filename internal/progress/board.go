// internal/progress/board.go
//
// Mission select board: one row per level with its lock state and star marks.

package progress

import (
	"strings"

	"github.com/samber/lo"
)

// Mission is one row of the mission select board.
type Mission struct {
	Level    int    `json:"level"`
	Unlocked bool   `json:"unlocked"`
	Stars    int    `json:"stars"`
	Marks    string `json:"marks"` // "", "*", "* *" or "* * *"
}

// Board summarises every campaign mission for the select screen.
func (p *PlayerData) Board() []Mission {
	return lo.Map(lo.RangeFrom(1, LevelCount), func(level int, _ int) Mission {
		stars := p.Stars(level)
		return Mission{
			Level:    level,
			Unlocked: p.Unlocked(level),
			Stars:    stars,
			Marks:    strings.TrimSpace(strings.Repeat("* ", stars)),
		}
	})
}
