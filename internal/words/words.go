// internal/words/words.go
//
// Mission keyword lists.
//
// Responsibilities:
//   - Load one word list per mission level plus the level pangrams.
//   - Sample a mission's keyword set: up to ten words drawn without
//     replacement, followed by the level pangram.
//
// Word Lists:
//   - One file per level, one keyword or phrase per line, blank lines ignored.
//   - Keywords keep their case, punctuation and inner spaces.
//   - pangrams.txt holds one pangram per level, in level order.
//
// Sources:
//   - LoadDir reads the files from a directory (KEYWORDS_DIR).
//   - Embedded reads the copies shipped in the assets package.
package words

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/samber/lo"

	"github.com/robalobadob/typehack/assets"
)

const (
	// Levels is the number of missions with a word list.
	Levels = 15
	// PerMission is the number of keywords sampled before the pangram.
	PerMission = 10
	// PangramFile holds the mission-ending pangrams.
	PangramFile = "pangrams.txt"
)

// Filenames maps a level index (level-1) to its word list file.
var Filenames = [Levels]string{
	"homerow_words.txt",
	"homerow_words_plusE.txt",
	"homerow_words_plusI.txt",
	"homerow_words_plusEI.txt",
	"homerow_words_plusVN.txt",
	"all_left.txt",
	"all_right.txt",
	"mission8.txt",  // keyboard numbers
	"mission9.txt",  // numberpad numbers
	"mission10.txt", // alphanumeric
	"mission11.txt", // punctuation
	"mission12.txt", // phrases
	"mission13.txt", // poetry
	"mission14.txt", // jargon and code
	"mission15.txt", // the really hard stuff
}

// ErrEmptyList is returned when a level has no usable keywords.
var ErrEmptyList = errors.New("words: empty word list")

// Library holds every level's word list and pangram.
type Library struct {
	lists    [Levels][]string
	pangrams [Levels]string
}

// Embedded loads the word lists shipped with the binary.
func Embedded() (*Library, error) {
	return Load(assets.WordLists())
}

// LoadDir loads word lists from a directory on disk.
func LoadDir(dir string) (*Library, error) {
	return Load(os.DirFS(dir))
}

// Load reads every level file and the pangram file from fsys.
func Load(fsys fs.FS) (*Library, error) {
	lib := &Library{}
	for i, name := range Filenames {
		lines, err := readLines(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("words: read %s: %w", name, err)
		}
		if len(lines) == 0 {
			return nil, fmt.Errorf("words: %s: %w", name, ErrEmptyList)
		}
		lib.lists[i] = lines
	}

	pangrams, err := readLines(fsys, PangramFile)
	if err != nil {
		return nil, fmt.Errorf("words: read %s: %w", PangramFile, err)
	}
	for i := range lib.pangrams {
		if i < len(pangrams) {
			lib.pangrams[i] = pangrams[i]
		}
	}
	return lib, nil
}

// readLines loads one entry per line, trimming surrounding whitespace and
// skipping blank lines.
func readLines(fsys fs.FS, name string) ([]string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			out = append(out, s)
		}
	}
	return out, sc.Err()
}

// clamp maps a 1-based level onto a valid list index.
func clamp(level int) int {
	i := level - 1
	if i < 0 {
		return 0
	}
	if i >= Levels {
		return Levels - 1
	}
	return i
}

// List returns the full word list for a level. Out-of-range levels are
// clamped to the nearest mission.
func (l *Library) List(level int) []string {
	return l.lists[clamp(level)]
}

// Pangram returns the mission-ending pangram for a level, "" if none is set.
func (l *Library) Pangram(level int) string {
	return l.pangrams[clamp(level)]
}

// MissionKeywords samples a keyword set for level using rng.
func (l *Library) MissionKeywords(level int, rng Rand) []string {
	list := l.List(level)
	n := min(PerMission, len(list))
	picked := lo.Map(rng.Perm(len(list))[:n], func(i int, _ int) string {
		return list[i]
	})
	if p := l.Pangram(level); p != "" {
		picked = append(picked, p)
	}
	return picked
}

// Stats returns the number of words loaded per level, indexed by level-1.
func (l *Library) Stats() []int {
	return lo.Map(l.lists[:], func(list []string, _ int) int { return len(list) })
}
