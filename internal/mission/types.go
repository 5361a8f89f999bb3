// internal/mission/types.go
//
// Core type definitions for the mission engine.
// Defines:
//   - Status: lifecycle of a run (active → complete/failed).
//   - Cue:    feedback a client should play for a keystroke.
//   - Rules:  timing and error limits of a mission.
//   - Run:    state of a single mission attempt.

package mission

import "time"

// Status is the lifecycle state of a mission run.
type Status string

const (
	StatusActive   Status = "active"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Mode tells campaign missions apart from the daily challenge.
type Mode string

const (
	ModeCampaign Mode = "campaign"
	ModeDaily    Mode = "daily"
)

// Cue is the feedback signal for a single keystroke.
//   - "blip":   correct character.
//   - "buzzer": wrong character.
//   - "chime":  keyword finished.
type Cue string

const (
	CueBlip   Cue = "blip"
	CueBuzzer Cue = "buzzer"
	CueChime  Cue = "chime"
)

// Rules holds the limits a mission is played under.
type Rules struct {
	Allotted   time.Duration // total time to finish every keyword
	WarnErrors int           // error count that flags the run as in danger
	MaxErrors  int           // error count that fails the run
}

// DefaultRules returns the standard limits: 60 seconds, warning at 4 errors,
// failure at 5.
func DefaultRules() Rules {
	return Rules{
		Allotted:   60 * time.Second,
		WarnErrors: 4,
		MaxErrors:  5,
	}
}

// Run holds the state of one mission attempt.
// It is re-created for every attempt; nothing carries over between runs.
type Run struct {
	ID       string   `json:"id"`
	Owner    string   `json:"owner"` // "agent:<name>" or "anon:<cookie id>"
	Mode     Mode     `json:"mode"`
	Level    int      `json:"level"` // 1-based mission level
	Keywords []string `json:"keywords"`
	Rules    Rules    `json:"-"`

	KeywordIndex int `json:"keywordIndex"` // keyword currently being typed
	CharIndex    int `json:"charIndex"`    // next rune to type within the keyword
	Errors       int `json:"errors"`
	Chars        int `json:"chars"`  // every keystroke, wrong ones included
	Streak       int `json:"streak"` // consecutive keywords finished without a mistake

	Remaining time.Duration `json:"remaining"`
	Elapsed   time.Duration `json:"elapsed"`

	Status     Status   `json:"status"`
	Stars      int      `json:"stars"` // set only on completion
	Transcript []string `json:"transcript"`

	UpdatedAt time.Time `json:"updatedAt"` // wall clock of the last Tick, maintained by callers
}

// Keystroke is the outcome of a single typed character.
type Keystroke struct {
	Char         string `json:"char"`
	Correct      bool   `json:"correct"`
	WordComplete bool   `json:"wordComplete"`
	Cues         []Cue  `json:"cues"`
	Status       Status `json:"status"`
}
