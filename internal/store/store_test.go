package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalobadob/typehack/internal/mission"
	"github.com/robalobadob/typehack/internal/progress"
)

func TestValidName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"ada", false},
		{"Agent_007", false},
		{"ab", true},
		{"", true},
		{"Player-1", true},
		{"../../etc/passwd", true},
		{"name with space", true},
		{"abcdefghijklmnopqrstuvwxyz", true},
	}
	for _, tt := range tests {
		err := ValidName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidName(%q) = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidName) {
			t.Errorf("ValidName(%q) error %v does not wrap ErrInvalidName", tt.name, err)
		}
	}
}

func TestFilesLoadMissingIsFresh(t *testing.T) {
	f := NewFiles(t.TempDir())
	p, err := f.Load(context.Background(), "ada")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.PlayerName != "ada" || p.Cleared() != 0 || !p.SaveOnDestroy {
		t.Errorf("fresh data = %+v", p)
	}
}

func TestFilesRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "saves")
	f := NewFiles(dir)
	ctx := context.Background()

	p := progress.Named("ada")
	if _, err := p.RecordMission(1, 3); err != nil {
		t.Fatal(err)
	}
	p.SaveOnDestroy = false
	if err := f.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "ada_savedata.json")); err != nil {
		t.Fatalf("save file missing: %v", err)
	}

	got, err := f.Load(ctx, "ada")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *p {
		t.Errorf("loaded %+v, want %+v", got, p)
	}
}

func TestFilesReadsHandWrittenSave(t *testing.T) {
	dir := t.TempDir()
	raw := `{"playerName":"ada","levelStatus":[3,2,1,0,0,0,0,0,0,0,0,0,0,0,0],` +
		`"achievements":[true,true,true,false,false,false,false,false,false,false],"saveOnDestroy":true}`
	if err := os.WriteFile(filepath.Join(dir, "ada_savedata.json"), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := NewFiles(dir).Load(context.Background(), "ada")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Stars(1) != 3 || p.Stars(3) != 1 || !p.Achievements[progress.ThreeStars] {
		t.Errorf("loaded %+v", p)
	}
}

func TestFilesCorruptAndInvalid(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir)
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(dir, "bad_savedata.json"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Load(ctx, "bad"); err == nil {
		t.Error("corrupt save loaded without error")
	}
	if _, err := f.Load(ctx, "../x"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("traversal name: got %v", err)
	}
	if err := f.Save(ctx, progress.New()); !errors.Is(err, ErrInvalidName) {
		t.Errorf("saving default player: got %v", err)
	}
}

func TestFilesNameMismatch(t *testing.T) {
	dir := t.TempDir()
	data, _ := json.Marshal(progress.Named("someone"))
	if err := os.WriteFile(filepath.Join(dir, "ada_savedata.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := NewFiles(dir).Load(context.Background(), "ada")
	if err != nil {
		t.Fatal(err)
	}
	if p.PlayerName != "ada" {
		t.Errorf("PlayerName = %q, want file owner", p.PlayerName)
	}
}

func TestMemoryPlayers(t *testing.T) {
	s := NewMemoryPlayers()
	ctx := context.Background()
	p := progress.Named("ada")
	p.LevelStatus[0] = 2
	if err := s.Save(ctx, p); err != nil {
		t.Fatal(err)
	}
	p.LevelStatus[0] = 3 // must not leak into the stored copy

	got, err := s.Load(ctx, "ada")
	if err != nil {
		t.Fatal(err)
	}
	if got.Stars(1) != 2 {
		t.Errorf("stars = %d, want 2", got.Stars(1))
	}
	fresh, _ := s.Load(ctx, "bob")
	if fresh.PlayerName != "bob" || fresh.Cleared() != 0 {
		t.Errorf("fresh = %+v", fresh)
	}
}

func TestMemoryRuns(t *testing.T) {
	s := NewMemoryRuns()
	ctx := context.Background()
	r, err := mission.New(1, []string{"ask"}, mission.DefaultRules())
	if err != nil {
		t.Fatal(err)
	}
	r.ID = "run-1"
	r.UpdatedAt = time.Now().Add(-time.Hour)
	if err := s.Save(ctx, r); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "run-1")
	if err != nil || got != r {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if _, err := s.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing run: got %v", err)
	}
	if n := s.Sweep(ctx, time.Now().Add(-2*time.Hour)); n != 0 {
		t.Errorf("swept %d fresh runs", n)
	}
	if n := s.Sweep(ctx, time.Now()); n != 1 {
		t.Errorf("swept %d, want 1", n)
	}
	if _, err := s.Get(ctx, "run-1"); !errors.Is(err, ErrNotFound) {
		t.Error("swept run still present")
	}
}
