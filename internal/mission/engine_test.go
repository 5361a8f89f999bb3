package mission

import (
	"errors"
	"testing"
	"time"
)

func newRun(t *testing.T, keywords ...string) *Run {
	t.Helper()
	r, err := New(1, keywords, DefaultRules())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestNewRejectsEmptyKeywords(t *testing.T) {
	if _, err := New(1, nil, DefaultRules()); !errors.Is(err, ErrNoKeywords) {
		t.Fatalf("got %v, want ErrNoKeywords", err)
	}
	if _, err := New(1, []string{"", ""}, DefaultRules()); !errors.Is(err, ErrNoKeywords) {
		t.Fatalf("got %v, want ErrNoKeywords for blank keywords", err)
	}
}

func TestTypeCorrectAdvancesCursor(t *testing.T) {
	r := newRun(t, "ask", "lad")

	ks, err := r.Type('a')
	if err != nil {
		t.Fatalf("Type: %v", err)
	}
	if !ks.Correct || ks.WordComplete {
		t.Errorf("got %+v, want correct and not complete", ks)
	}
	done, rest := r.Split()
	if done != "a" || rest != "sk" {
		t.Errorf("Split = %q,%q, want %q,%q", done, rest, "a", "sk")
	}
	if len(ks.Cues) != 1 || ks.Cues[0] != CueBlip {
		t.Errorf("cues = %v, want [blip]", ks.Cues)
	}
}

func TestFinishingKeywordExtendsStreak(t *testing.T) {
	r := newRun(t, "ask", "lad")

	out := r.TypeString("ask")
	last := out[len(out)-1]
	if !last.WordComplete {
		t.Fatalf("last keystroke not word complete: %+v", last)
	}
	if r.Streak != 1 || r.KeywordIndex != 1 || r.CharIndex != 0 {
		t.Errorf("streak=%d keyword=%d char=%d, want 1,1,0", r.Streak, r.KeywordIndex, r.CharIndex)
	}
	if r.Keyword() != "lad" {
		t.Errorf("Keyword = %q, want lad", r.Keyword())
	}
	if got := r.Transcript[len(r.Transcript)-1]; got != "> ask" {
		t.Errorf("transcript tail = %q, want %q", got, "> ask")
	}
}

func TestWrongKeyResetsWordAndStreak(t *testing.T) {
	r := newRun(t, "ask", "lad", "sad")
	r.TypeString("askl")

	ks, _ := r.Type('x')
	if ks.Correct {
		t.Fatal("expected miss")
	}
	if r.Streak != 0 || r.CharIndex != 0 || r.Errors != 1 || r.Chars != 5 {
		t.Errorf("streak=%d char=%d errors=%d chars=%d, want 0,0,1,5", r.Streak, r.CharIndex, r.Errors, r.Chars)
	}
	if r.KeywordIndex != 1 {
		t.Errorf("keyword index moved on a miss: %d", r.KeywordIndex)
	}
}

func TestWarningAndFailureOnErrors(t *testing.T) {
	r := newRun(t, "ask")
	r.TypeString("xxx")
	if r.Warning() {
		t.Fatal("warning raised after 3 errors")
	}
	r.Type('x')
	if !r.Warning() {
		t.Fatal("warning not raised after 4 errors")
	}
	ks, _ := r.Type('x')
	if ks.Status != StatusFailed || r.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", r.Status)
	}
	if _, err := r.Type('a'); !errors.Is(err, ErrInactive) {
		t.Errorf("Type after failure: got %v, want ErrInactive", err)
	}
	if r.Chars != 5 {
		t.Errorf("chars = %d, keystrokes after failure must not count", r.Chars)
	}
}

func TestCompletionRatesStars(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		misses  int
		want    int
	}{
		{"fast and clean", 10 * time.Second, 0, 3},
		{"fast with one miss", 10 * time.Second, 1, 2},
		{"half time clean", 35 * time.Second, 0, 2},
		{"slow", 50 * time.Second, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRun(t, "as", "ad")
			r.Tick(tt.elapsed)
			for i := 0; i < tt.misses; i++ {
				r.Type('z')
			}
			r.TypeString("asad")
			if r.Status != StatusComplete {
				t.Fatalf("status = %s, want complete", r.Status)
			}
			if r.Stars != tt.want {
				t.Errorf("stars = %d, want %d", r.Stars, tt.want)
			}
			if r.Keyword() != "" {
				t.Errorf("Keyword after completion = %q", r.Keyword())
			}
		})
	}
}

func TestTypeStringStopsAtCompletion(t *testing.T) {
	r := newRun(t, "ok")
	out := r.TypeString("okextra")
	if len(out) != 2 {
		t.Fatalf("processed %d keystrokes, want 2", len(out))
	}
	if r.Chars != 2 {
		t.Errorf("chars = %d, want 2", r.Chars)
	}
}

func TestTickExpiresMission(t *testing.T) {
	r := newRun(t, "ask")
	r.Tick(-time.Second)
	if r.Remaining != time.Minute {
		t.Fatalf("negative tick changed remaining: %v", r.Remaining)
	}
	r.Tick(59*time.Second + 999*time.Millisecond + 500*time.Microsecond)
	if r.Status != StatusFailed {
		t.Fatalf("status = %s, want failed with under a millisecond left", r.Status)
	}
	if r.TimeFraction() < 0 || r.TimeFraction() > 0.001 {
		t.Errorf("TimeFraction = %v", r.TimeFraction())
	}
	before := r.Remaining
	r.Tick(time.Second)
	if r.Remaining != before {
		t.Error("clock kept running after failure")
	}
}

func TestRatesAndSpeed(t *testing.T) {
	r := newRun(t, "asdfg", "hjkl")
	if r.ErrorRate() != 0 || r.WPM() != 0 {
		t.Fatalf("fresh run: rate=%v wpm=%v", r.ErrorRate(), r.WPM())
	}
	r.TypeString("asdfgx")
	r.Tick(6 * time.Second)

	if got := r.ErrorRate(); got < 16.66 || got > 16.67 {
		t.Errorf("ErrorRate = %v, want 16.67", got)
	}
	// 5 correct characters in 6 seconds is 10 wpm.
	if got := r.WPM(); got != 10 {
		t.Errorf("WPM = %v, want 10", got)
	}
}

func TestUnicodeKeywords(t *testing.T) {
	r := newRun(t, "héllo")
	r.TypeString("hé")
	done, rest := r.Split()
	if done != "hé" || rest != "llo" {
		t.Errorf("Split = %q,%q", done, rest)
	}
}

func TestRate(t *testing.T) {
	allotted := time.Minute
	tests := []struct {
		remaining time.Duration
		errors    int
		want      int
	}{
		{31 * time.Second, 0, 3},
		{30 * time.Second, 0, 2},
		{31 * time.Second, 2, 2},
		{16 * time.Second, 4, 2},
		{15 * time.Second, 0, 1},
		{time.Second, 0, 1},
	}
	for _, tt := range tests {
		if got := Rate(tt.remaining, allotted, tt.errors); got != tt.want {
			t.Errorf("Rate(%v, %d) = %d, want %d", tt.remaining, tt.errors, got, tt.want)
		}
	}
}

func TestSnapshot(t *testing.T) {
	r := newRun(t, "ask", "lad")
	r.ID = "run-1"
	r.TypeString("as")
	s := r.Snapshot()
	if s.ID != "run-1" || s.Keyword != "ask" || s.Typed != "as" || s.Pending != "k" {
		t.Errorf("snapshot = %+v", s)
	}
	if s.KeywordCount != 2 || s.RemainingMs != 60000 || s.TimeFraction != 1 {
		t.Errorf("snapshot counters = %+v", s)
	}
}
