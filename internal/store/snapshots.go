package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/hockey-gm/internal/league"
	"github.com/jstittsworth/hockey-gm/pkg/utils"
)

// SaveVersion is the current snapshot schema. Older files are walked
// through the migration chain on load.
const SaveVersion = 3

const (
	FileLeagueState   = "league_state.json"
	FileSeasonHistory = "season_history.json"
	FileCareerHistory = "career_history.json"
	FileHallOfFame    = "hall_of_fame.json"
)

// envelope wraps every snapshot so the version survives schema drift.
type envelope struct {
	SaveVersion int             `json:"save_version"`
	SavedAt     time.Time       `json:"saved_at"`
	Data        json.RawMessage `json:"data"`
}

// Snapshots reads and writes the versioned JSON save files. Writes are
// atomic: content lands in a temp file, the old file becomes the .bak,
// and the temp is renamed into place.
type Snapshots struct {
	dir string
	log *logrus.Logger
}

func NewSnapshots(dir string, log *logrus.Logger) (*Snapshots, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Snapshots{dir: dir, log: log}, nil
}

func (s *Snapshots) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Snapshots) write(name string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	env := envelope{SaveVersion: SaveVersion, SavedAt: time.Now().UTC(), Data: data}
	blob, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal envelope %s: %w", name, err)
	}

	target := s.path(name)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if _, err := os.Stat(target); err == nil {
		if err := os.Rename(target, target+".bak"); err != nil {
			return fmt.Errorf("rotate backup for %s: %w", name, err)
		}
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}

// read loads a snapshot, falling back to the .bak copy when the main
// file is missing or unreadable. A save newer than this build is
// refused rather than guessed at.
func (s *Snapshots) read(name string, out interface{}) (bool, error) {
	load := func(path string) error {
		blob, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var env envelope
		if err := json.Unmarshal(blob, &env); err != nil {
			return fmt.Errorf("parse envelope: %w", err)
		}
		if env.SaveVersion > SaveVersion {
			return fmt.Errorf("save version %d is newer than supported %d", env.SaveVersion, SaveVersion)
		}
		data := env.Data
		if env.SaveVersion < SaveVersion {
			migrated, err := migrate(name, env.SaveVersion, data)
			if err != nil {
				return fmt.Errorf("migrate from v%d: %w", env.SaveVersion, err)
			}
			data = migrated
		}
		return json.Unmarshal(data, out)
	}

	target := s.path(name)
	err := load(target)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}

	s.log.WithError(err).WithField("file", name).Warn("snapshot unreadable, trying backup")
	if bakErr := load(target + ".bak"); bakErr == nil {
		return true, nil
	}
	return false, utils.NewAppError(utils.ErrCodeCorruptedSave,
		fmt.Sprintf("save file %s and its backup are unreadable", name), err.Error())
}

// SaveAll persists the league and its archive across the four
// snapshot files.
func (s *Snapshots) SaveAll(state *league.State, archive *league.Archive) error {
	if err := s.write(FileLeagueState, state); err != nil {
		return err
	}
	if err := s.write(FileSeasonHistory, archive.Seasons); err != nil {
		return err
	}
	if err := s.write(FileCareerHistory, archive.Careers); err != nil {
		return err
	}
	return s.write(FileHallOfFame, archive.HallOfFame)
}

// LoadAll restores a saved franchise. found is false when no save
// exists and the caller should boot a fresh league.
func (s *Snapshots) LoadAll() (state *league.State, archive *league.Archive, found bool, err error) {
	state = &league.State{}
	archive = &league.Archive{}

	found, err = s.read(FileLeagueState, state)
	if err != nil || !found {
		return nil, nil, false, err
	}
	if _, err = s.read(FileSeasonHistory, &archive.Seasons); err != nil {
		return nil, nil, false, err
	}
	if _, err = s.read(FileCareerHistory, &archive.Careers); err != nil {
		return nil, nil, false, err
	}
	if _, err = s.read(FileHallOfFame, &archive.HallOfFame); err != nil {
		return nil, nil, false, err
	}
	return state, archive, true, nil
}

// Reset removes every snapshot and backup, abandoning the franchise.
func (s *Snapshots) Reset() error {
	for _, name := range []string{FileLeagueState, FileSeasonHistory, FileCareerHistory, FileHallOfFame} {
		for _, path := range []string{s.path(name), s.path(name) + ".bak"} {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove %s: %w", path, err)
			}
		}
	}
	return nil
}
