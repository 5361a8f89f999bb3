// internal/mission/snapshot.go
//
// Client-facing view of a run: progress, timer, rating and transcript.

package mission

// Snapshot is the read-only view of a run that clients render.
type Snapshot struct {
	ID           string   `json:"runId"`
	Mode         Mode     `json:"mode"`
	Level        int      `json:"level"`
	Status       Status   `json:"status"`
	Keyword      string   `json:"keyword"`
	Typed        string   `json:"typed"`
	Pending      string   `json:"pending"`
	KeywordIndex int      `json:"keywordIndex"`
	KeywordCount int      `json:"keywordCount"`
	Streak       int      `json:"streak"`
	Errors       int      `json:"errors"`
	Warning      bool     `json:"warning"`
	ErrorRate    float64  `json:"errorRate"`
	WPM          float64  `json:"wpm"`
	RemainingMs  int64    `json:"remainingMs"`
	TimeFraction float64  `json:"timeFraction"`
	Stars        int      `json:"stars,omitempty"`
	Transcript   []string `json:"transcript"`
}

// Snapshot captures the current state of the run.
func (r *Run) Snapshot() Snapshot {
	typed, pending := r.Split()
	remaining := r.Remaining
	if remaining < 0 {
		remaining = 0
	}
	return Snapshot{
		ID:           r.ID,
		Mode:         r.Mode,
		Level:        r.Level,
		Status:       r.Status,
		Keyword:      r.Keyword(),
		Typed:        typed,
		Pending:      pending,
		KeywordIndex: r.KeywordIndex,
		KeywordCount: len(r.Keywords),
		Streak:       r.Streak,
		Errors:       r.Errors,
		Warning:      r.Warning(),
		ErrorRate:    r.ErrorRate(),
		WPM:          r.WPM(),
		RemainingMs:  remaining.Milliseconds(),
		TimeFraction: r.TimeFraction(),
		Stars:        r.Stars,
		Transcript:   append([]string(nil), r.Transcript...),
	}
}
