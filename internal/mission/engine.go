// internal/mission/engine.go
//
// Core engine for a single typing mission.
// Responsibilities:
//   - Create runs from a keyword set and a rule set.
//   - Evaluate keystrokes one rune at a time against the current keyword.
//   - Track streak, error count, error rate and typing speed.
//   - Advance the mission timer and fail the run when it runs out.
//   - Rate completed missions with 1–3 stars.
//
// State transitions:
//   - active → complete: the last rune of the last keyword is typed.
//   - active → failed:   MaxErrors wrong keystrokes, or the timer expires.
//
// The engine has no notion of wall-clock time; callers feed elapsed time
// through Tick.
package mission

import (
	"errors"
	"time"
)

const briefing = "> Enter the KEYWORDS shown below as they appear to counteract the cyberthreat."

// ErrInactive is returned when input arrives after the run has ended.
var ErrInactive = errors.New("mission not active")

// ErrNoKeywords is returned when a run is created without anything to type.
var ErrNoKeywords = errors.New("mission has no keywords")

// New constructs an active run for level using keywords in order.
// Empty keywords are dropped; at least one must remain.
func New(level int, keywords []string, rules Rules) (*Run, error) {
	kw := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k != "" {
			kw = append(kw, k)
		}
	}
	if len(kw) == 0 {
		return nil, ErrNoKeywords
	}
	if rules.Allotted <= 0 {
		rules.Allotted = DefaultRules().Allotted
	}
	return &Run{
		Mode:       ModeCampaign,
		Level:      level,
		Keywords:   kw,
		Rules:      rules,
		Remaining:  rules.Allotted,
		Status:     StatusActive,
		Transcript: []string{briefing, ">"},
	}, nil
}

// Active reports whether the run still accepts input.
func (r *Run) Active() bool { return r.Status == StatusActive }

// Keyword returns the keyword currently presented, or "" once the run is over.
func (r *Run) Keyword() string {
	if !r.Active() || r.KeywordIndex >= len(r.Keywords) {
		return ""
	}
	return r.Keywords[r.KeywordIndex]
}

// Split returns the typed and untyped portions of the current keyword.
func (r *Run) Split() (done, rest string) {
	k := []rune(r.Keyword())
	i := r.CharIndex
	if i > len(k) {
		i = len(k)
	}
	return string(k[:i]), string(k[i:])
}

// Type evaluates one typed rune.
//
// A correct rune advances the cursor; finishing a keyword extends the streak
// and moves on to the next one, and finishing the last keyword completes the
// mission. A wrong rune resets the cursor to the start of the keyword, breaks
// the streak and counts an error; MaxErrors errors fail the mission.
func (r *Run) Type(ch rune) (Keystroke, error) {
	if !r.Active() {
		return Keystroke{Char: string(ch), Status: r.Status}, ErrInactive
	}
	ks := Keystroke{Char: string(ch)}
	r.Chars++

	word := []rune(r.Keywords[r.KeywordIndex])
	if ch == word[r.CharIndex] {
		ks.Correct = true
		ks.Cues = append(ks.Cues, CueBlip)
		r.CharIndex++
		if r.CharIndex == len(word) {
			ks.WordComplete = true
			ks.Cues = append(ks.Cues, CueChime)
			r.Transcript = append(r.Transcript, "> "+string(word))
			r.CharIndex = 0
			r.Streak++
			r.KeywordIndex++
			if r.KeywordIndex == len(r.Keywords) {
				r.complete()
			}
		}
	} else {
		ks.Cues = append(ks.Cues, CueBuzzer)
		r.Streak = 0
		r.CharIndex = 0
		r.Errors++
		if r.Rules.MaxErrors > 0 && r.Errors >= r.Rules.MaxErrors {
			r.fail()
		}
	}
	ks.Status = r.Status
	return ks, nil
}

// TypeString feeds every rune of s through Type, stopping when the run ends.
func (r *Run) TypeString(s string) []Keystroke {
	var out []Keystroke
	for _, ch := range s {
		ks, err := r.Type(ch)
		if err != nil {
			break
		}
		out = append(out, ks)
	}
	return out
}

// Tick advances the mission clock by dt and fails the run once less than a
// millisecond remains.
func (r *Run) Tick(dt time.Duration) {
	if !r.Active() || dt <= 0 {
		return
	}
	r.Remaining -= dt
	r.Elapsed += dt
	if r.Remaining < time.Millisecond {
		r.fail()
	}
}

// Warning reports whether the run is one step away from failing on errors.
func (r *Run) Warning() bool {
	return r.Active() && r.Rules.WarnErrors > 0 && r.Errors >= r.Rules.WarnErrors
}

// TimeFraction is the share of allotted time left, clamped to [0,1].
func (r *Run) TimeFraction() float64 {
	if r.Rules.Allotted <= 0 {
		return 0
	}
	f := float64(r.Remaining) / float64(r.Rules.Allotted)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// ErrorRate is the percentage of keystrokes that were wrong.
func (r *Run) ErrorRate() float64 {
	if r.Chars == 0 {
		return 0
	}
	return 100 * float64(r.Errors) / float64(r.Chars)
}

// WPM is the typing speed in words per minute, counting five correct
// characters as one word.
func (r *Run) WPM() float64 {
	secs := r.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return 12 * float64(r.Chars-r.Errors) / secs
}

// Rate returns the star rating for a mission finished with remaining time
// left and the given number of mistakes.
func Rate(remaining, allotted time.Duration, mistakes int) int {
	switch {
	case remaining > allotted/2 && mistakes == 0:
		return 3
	case remaining > allotted/4:
		return 2
	default:
		return 1
	}
}

func (r *Run) complete() {
	r.Status = StatusComplete
	r.Stars = Rate(r.Remaining, r.Rules.Allotted, r.Errors)
	r.Transcript = append(r.Transcript, ">", "> MISSION SUCCESS.")
}

func (r *Run) fail() {
	r.Status = StatusFailed
	r.CharIndex = 0
	r.Transcript = append(r.Transcript, ">", "> MISSION FAILED.")
}
