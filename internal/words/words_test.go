package words

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"testing/fstest"
)

func testFS(list string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for i, name := range Filenames {
		body := list
		if i > 0 {
			body = "word\n"
		}
		fsys[name] = &fstest.MapFile{Data: []byte(body)}
	}
	fsys[PangramFile] = &fstest.MapFile{Data: []byte("the quick brown fox jumps over the lazy dog\n")}
	return fsys
}

func TestEmbeddedLoads(t *testing.T) {
	lib, err := Embedded()
	if err != nil {
		t.Fatalf("Embedded: %v", err)
	}
	for level := 1; level <= Levels; level++ {
		if n := len(lib.List(level)); n < PerMission {
			t.Errorf("level %d has %d words, want at least %d", level, n, PerMission)
		}
		if lib.Pangram(level) == "" {
			t.Errorf("level %d has no pangram", level)
		}
	}
}

func TestMissionKeywords(t *testing.T) {
	lib, err := Embedded()
	if err != nil {
		t.Fatal(err)
	}
	kw := lib.MissionKeywords(1, Seeded(7))
	if len(kw) != PerMission+1 {
		t.Fatalf("got %d keywords, want %d", len(kw), PerMission+1)
	}
	if kw[len(kw)-1] != lib.Pangram(1) {
		t.Errorf("last keyword = %q, want pangram", kw[len(kw)-1])
	}
	seen := map[string]bool{}
	for _, k := range kw[:PerMission] {
		if seen[k] {
			t.Errorf("keyword %q sampled twice", k)
		}
		seen[k] = true
		if !slices.Contains(lib.List(1), k) {
			t.Errorf("keyword %q not from level 1 list", k)
		}
	}
}

func TestMissionKeywordsDeterministicForSeed(t *testing.T) {
	lib, err := Embedded()
	if err != nil {
		t.Fatal(err)
	}
	a := lib.MissionKeywords(4, Seeded(2021))
	b := lib.MissionKeywords(4, Seeded(2021))
	if !slices.Equal(a, b) {
		t.Errorf("same seed gave %v and %v", a, b)
	}
}

func TestShortListUsesEveryWord(t *testing.T) {
	lib, err := Load(testFS("one\n\n  two  \nthree\n"))
	if err != nil {
		t.Fatal(err)
	}
	kw := lib.MissionKeywords(1, Seeded(1))
	if len(kw) != 4 {
		t.Fatalf("got %v, want 3 words and a pangram", kw)
	}
	got := slices.Clone(kw[:3])
	slices.Sort(got)
	if !slices.Equal(got, []string{"one", "three", "two"}) {
		t.Errorf("words = %v", got)
	}
}

func TestLevelClamping(t *testing.T) {
	lib, err := Load(testFS("first\n"))
	if err != nil {
		t.Fatal(err)
	}
	if lib.List(0)[0] != "first" || lib.List(-3)[0] != "first" {
		t.Error("low levels not clamped to level 1")
	}
	if lib.List(99)[0] != "word" {
		t.Error("high levels not clamped to the last level")
	}
}

func TestLoadErrors(t *testing.T) {
	fsys := testFS("   \n\n")
	if _, err := Load(fsys); !errors.Is(err, ErrEmptyList) {
		t.Errorf("blank list: got %v, want ErrEmptyList", err)
	}

	fsys = testFS("a\n")
	delete(fsys, Filenames[3])
	if _, err := Load(fsys); err == nil || !strings.Contains(err.Error(), Filenames[3]) {
		t.Errorf("missing file: got %v", err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	for name, f := range testFS("disk\n") {
		if err := os.WriteFile(filepath.Join(dir, name), f.Data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	lib, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if lib.List(1)[0] != "disk" {
		t.Errorf("List(1) = %v", lib.List(1))
	}
	if got := lib.Stats(); len(got) != Levels || got[0] != 1 {
		t.Errorf("Stats = %v", got)
	}
}
