// internal/store/file.go
//
// File-backed PlayerStore.
// Responsibilities:
//   - One "<playerName>_savedata.json" per player under the save directory.
//   - Missing files load as fresh progress; corrupt files are errors.
//   - Writes go to a temp file and are renamed into place.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/typehack/internal/progress"
)

// SaveSuffix is appended to the player name to form the save file name.
const SaveSuffix = "_savedata.json"

// Files stores one JSON file per player in a directory.
type Files struct {
	dir string
}

// NewFiles returns a file-backed PlayerStore rooted at dir.
// The directory is created on first save.
func NewFiles(dir string) *Files {
	return &Files{dir: dir}
}

// Path returns the save file location for a player.
func (f *Files) Path(name string) (string, error) {
	if err := ValidName(name); err != nil {
		return "", err
	}
	return filepath.Join(f.dir, name+SaveSuffix), nil
}

// Load reads a player's save file. A missing file yields fresh data for
// that player.
func (f *Files) Load(_ context.Context, name string) (*progress.PlayerData, error) {
	path, err := f.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("player", name).Msg("no save file, starting fresh")
		return progress.Named(name), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	p := progress.Named(name)
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	p.Normalize()
	if p.PlayerName != name {
		log.Warn().Str("player", name).Str("stored", p.PlayerName).Msg("save file name mismatch")
		p.PlayerName = name
	}
	return p, nil
}

// Save overwrites the player's save file.
func (f *Files) Save(_ context.Context, p *progress.PlayerData) error {
	path, err := f.Path(p.PlayerName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", f.dir, err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", p.PlayerName, err)
	}

	// Write beside the target, then rename into place.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	log.Debug().Str("player", p.PlayerName).Str("path", path).Msg("progress saved")
	return nil
}
