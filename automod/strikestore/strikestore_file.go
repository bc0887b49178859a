package strikestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

// Strike counts held in memory and written through to a JSON file on every increment.
//
// The file is a JSON object mapping user IDs (strings) to non-negative integer counts, indented with two spaces. The whole file is rewritten on each increment.
//
// Failures to write are logged and swallowed: the in-memory map stays the source of truth for the remainder of the process lifetime. This means that a restart after a failed write loses any strikes recorded since the last successful write.
type FileStrikeStore struct {
	Path   string
	Logger *slog.Logger

	lk     sync.Mutex
	counts map[string]int
}

var _ StrikeStore = (*FileStrikeStore)(nil)

// Loads the strike file at the given path.
//
// A missing or corrupt file never causes an error: the store starts out empty and the file is (re-)created containing an empty JSON object.
func NewFileStrikeStore(path string, logger *slog.Logger) *FileStrikeStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FileStrikeStore{
		Path:   path,
		Logger: logger.With("component", "strikestore", "path", path),
		counts: make(map[string]int),
	}
	counts, err := readStrikeFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.Logger.Info("no existing strike file, creating empty")
		} else {
			s.Logger.Warn("failed to load strike file, resetting to empty", "err", err)
		}
		if err := s.Save(); err != nil {
			s.Logger.Error("failed to create strike file", "err", err)
		}
		return s
	}
	s.counts = counts
	s.Logger.Info("loaded strike file", "users", len(counts))
	return s
}

func readStrikeFile(path string) (map[string]int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var counts map[string]int
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil, fmt.Errorf("parsing strike file: %w", err)
	}
	if counts == nil {
		counts = make(map[string]int)
	}
	for userID, c := range counts {
		if c < 0 {
			return nil, fmt.Errorf("negative strike count for user %s: %d", userID, c)
		}
	}
	return counts, nil
}

func (s *FileStrikeStore) GetStrikes(ctx context.Context, userID string) (int, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.counts[userID], nil
}

// Increments in memory, then synchronously rewrites the strike file before returning.
//
// Never returns an error; see type docs regarding write failures.
func (s *FileStrikeStore) IncrementStrikes(ctx context.Context, userID string) (int, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.counts[userID]++
	c := s.counts[userID]
	if err := s.saveLocked(); err != nil {
		strikePersistErrors.Inc()
		s.Logger.Error("failed to persist strike file", "user", userID, "count", c, "err", err)
	}
	return c, nil
}

// Returns a copy of the full user-to-count mapping.
func (s *FileStrikeStore) Snapshot() map[string]int {
	s.lk.Lock()
	defer s.lk.Unlock()
	return maps.Clone(s.counts)
}

// Writes the current in-memory state to disk.
func (s *FileStrikeStore) Save() error {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.saveLocked()
}

func (s *FileStrikeStore) saveLocked() error {
	b, err := json.MarshalIndent(s.counts, "", "  ")
	if err != nil {
		return err
	}
	// write to a temporary file in the same directory, then rename over the original, so readers never see a partial file
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

// Reads a strike file without modifying it. Used by tooling; returns an error for missing or corrupt files.
func ReadStrikeFile(path string) (map[string]int, error) {
	return readStrikeFile(path)
}
