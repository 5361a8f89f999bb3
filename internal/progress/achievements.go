// internal/progress/achievements.go
//
// Achievement badges and the rules that award them after a completed mission.

package progress

import "github.com/samber/lo"

// Achievement indexes the achievement slots of PlayerData.
type Achievement int

const (
	FirstMission Achievement = iota // complete any mission
	TwoStars                        // earn two stars on a mission
	ThreeStars                      // earn three stars on a mission
	ThreeInARow                     // three consecutive missions at three stars
	FiveInARow                      // five consecutive missions at three stars
)

var achievementNames = [AchievementCount]string{
	FirstMission: "First Contact",
	TwoStars:     "Competent Operator",
	ThreeStars:   "Flawless Execution",
	ThreeInARow:  "Hat Trick",
	FiveInARow:   "Untouchable",
}

// Name is the badge title, empty for reserved slots.
func (a Achievement) Name() string {
	if a < 0 || int(a) >= AchievementCount {
		return ""
	}
	return achievementNames[a]
}

// Badge is one achievement slot as shown to the player.
type Badge struct {
	ID     Achievement `json:"id"`
	Name   string      `json:"name"`
	Earned bool        `json:"earned"`
}

// Badges lists the defined achievements and whether each is earned.
func (p *PlayerData) Badges() []Badge {
	defined := lo.Filter(lo.Range(AchievementCount), func(i int, _ int) bool {
		return achievementNames[i] != ""
	})
	return lo.Map(defined, func(i int, _ int) Badge {
		return Badge{ID: Achievement(i), Name: achievementNames[i], Earned: p.Achievements[i]}
	})
}

// checkAchievements unlocks whatever the just-completed level qualifies for.
func (p *PlayerData) checkAchievements(level int) []Achievement {
	var unlocked []Achievement
	grant := func(a Achievement, ok bool) {
		if ok && !p.Achievements[a] {
			p.Achievements[a] = true
			unlocked = append(unlocked, a)
		}
	}

	stars := p.LevelStatus[level-1]
	grant(FirstMission, true)
	grant(TwoStars, stars > 1)
	grant(ThreeStars, stars > 2)
	grant(ThreeInARow, p.perfectRun(level, 3))
	grant(FiveInARow, p.perfectRun(level, 5))
	return unlocked
}

// perfectRun reports whether n consecutive levels ending at level are all
// rated three stars.
func (p *PlayerData) perfectRun(level, n int) bool {
	if level < n {
		return false
	}
	for i := level - n; i < level; i++ {
		if p.LevelStatus[i] < 3 {
			return false
		}
	}
	return true
}
