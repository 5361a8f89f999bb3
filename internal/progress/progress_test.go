package progress

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	p := New()
	if p.PlayerName != DefaultName || !p.SaveOnDestroy {
		t.Fatalf("New() = %+v", p)
	}
	if p.Registered() {
		t.Error("default player reported as registered")
	}
	if !Named("ada").Registered() {
		t.Error("named player not registered")
	}
	if Named("").Registered() {
		t.Error("empty name reported as registered")
	}
}

func TestUnlocked(t *testing.T) {
	p := New()
	if !p.Unlocked(1) {
		t.Fatal("level 1 locked")
	}
	if p.Unlocked(2) {
		t.Fatal("level 2 unlocked without clearing level 1")
	}
	p.LevelStatus[0] = 1
	if !p.Unlocked(2) {
		t.Error("level 2 locked after clearing level 1")
	}
	if p.Unlocked(0) || p.Unlocked(LevelCount+1) {
		t.Error("out of range level unlocked")
	}
}

func TestRecordMissionKeepsBestRating(t *testing.T) {
	p := New()
	if _, err := p.RecordMission(1, 3); err != nil {
		t.Fatal(err)
	}
	if _, err := p.RecordMission(1, 1); err != nil {
		t.Fatal(err)
	}
	if p.Stars(1) != 3 {
		t.Errorf("stars = %d, want 3", p.Stars(1))
	}
	if _, err := p.RecordMission(16, 2); !errors.Is(err, ErrLevelRange) {
		t.Errorf("got %v, want ErrLevelRange", err)
	}
}

func TestAchievements(t *testing.T) {
	tests := []struct {
		name  string
		prior []int // ratings for levels before the recorded one
		level int
		stars int
		want  []Achievement
	}{
		{"first clear at one star", nil, 1, 1, []Achievement{FirstMission}},
		{"two stars", nil, 1, 2, []Achievement{FirstMission, TwoStars}},
		{"three stars", nil, 1, 3, []Achievement{FirstMission, TwoStars, ThreeStars}},
		{"hat trick", []int{3, 3}, 3, 3, []Achievement{FirstMission, TwoStars, ThreeStars, ThreeInARow}},
		{"broken run", []int{3, 2}, 3, 3, []Achievement{FirstMission, TwoStars, ThreeStars}},
		{"five in a row", []int{3, 3, 3, 3}, 5, 3, []Achievement{FirstMission, TwoStars, ThreeStars, ThreeInARow, FiveInARow}},
		{"run too short", []int{3}, 2, 3, []Achievement{FirstMission, TwoStars, ThreeStars}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New()
			copy(p.LevelStatus[:], tt.prior)
			got, err := p.RecordMission(tt.level, tt.stars)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("unlocked = %v, want %v", got, tt.want)
			}
			for _, a := range tt.want {
				if !p.Achievements[a] {
					t.Errorf("achievement %d not stored", a)
				}
			}
		})
	}
}

func TestAchievementsUnlockOnce(t *testing.T) {
	p := New()
	_, _ = p.RecordMission(1, 3)
	got, _ := p.RecordMission(2, 3)
	if len(got) != 0 {
		t.Errorf("second mission unlocked %v, want nothing new", got)
	}
}

func TestReset(t *testing.T) {
	p := Named("ada")
	p.SaveOnDestroy = false
	_, _ = p.RecordMission(1, 3)
	p.Reset()
	if p.Cleared() != 0 || p.Achievements[FirstMission] {
		t.Errorf("Reset left progress: %+v", p)
	}
	if p.PlayerName != "ada" || p.SaveOnDestroy {
		t.Errorf("Reset touched identity: %+v", p)
	}
}

func TestBoard(t *testing.T) {
	p := New()
	p.LevelStatus[0] = 3
	p.LevelStatus[1] = 1
	b := p.Board()
	if len(b) != LevelCount {
		t.Fatalf("board has %d rows", len(b))
	}
	want := []Mission{
		{Level: 1, Unlocked: true, Stars: 3, Marks: "* * *"},
		{Level: 2, Unlocked: true, Stars: 1, Marks: "*"},
		{Level: 3, Unlocked: true, Stars: 0, Marks: ""},
		{Level: 4, Unlocked: false, Stars: 0, Marks: ""},
	}
	for i, w := range want {
		if b[i] != w {
			t.Errorf("row %d = %+v, want %+v", i, b[i], w)
		}
	}
}

func TestBadgesListDefinedSlots(t *testing.T) {
	p := New()
	p.Achievements[ThreeStars] = true
	badges := p.Badges()
	if len(badges) != 5 {
		t.Fatalf("got %d badges, want 5", len(badges))
	}
	if !badges[ThreeStars].Earned || badges[FirstMission].Earned {
		t.Errorf("badges = %+v", badges)
	}
	if Achievement(7).Name() != "" {
		t.Error("reserved slot has a name")
	}
}

func TestJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Named("ada"))
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"playerName", "levelStatus", "achievements", "saveOnDestroy"} {
		if _, ok := raw[k]; !ok {
			t.Errorf("missing key %q in %s", k, data)
		}
	}
}

func TestNormalize(t *testing.T) {
	p := New()
	p.LevelStatus[0] = 7
	p.LevelStatus[1] = -2
	p.Normalize()
	if p.LevelStatus[0] != 3 || p.LevelStatus[1] != 0 {
		t.Errorf("Normalize = %v", p.LevelStatus[:2])
	}
}
