// Package history persists benchmark runs to an append-only JSONL log, one
// self-contained run record per line. The log is the source of truth for
// regression comparison; records are never edited or deleted.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/dsync-tools/syncbench/pkg/bench"
)

// Store reads and appends run records at a fixed path.
type Store struct {
	Path string
	Log  zerolog.Logger
}

// NewStore creates a store for the history file at path.
func NewStore(path string, log zerolog.Logger) *Store {
	return &Store{Path: path, Log: log}
}

// Append writes one run as a single line at the end of the history file,
// creating the parent directory on first use. Measurements are rounded to
// the persisted precision before serialization; the caller's run is not
// modified.
func (s *Store) Append(run bench.Run) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := json.Marshal(run.Rounded())
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}

	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append to history file: %w", err)
	}

	return nil
}

// Load reads the whole history file and returns the last limit runs in
// their original order. A limit of zero or less returns everything. A
// missing file is an empty history, not an error. Lines that fail to parse
// are logged and skipped so one corrupt record cannot take the rest of the
// history with it.
func (s *Store) Load(limit int) ([]bench.Run, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	var runs []bench.Run

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var run bench.Run
		if err := json.Unmarshal(line, &run); err != nil {
			s.Log.Warn().
				Err(err).
				Str("file", s.Path).
				Int("line", lineNo).
				Msg("skipping malformed history record")
			continue
		}
		runs = append(runs, run)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	if limit > 0 && len(runs) > limit {
		runs = runs[len(runs)-limit:]
	}
	return runs, nil
}

// LoadAll returns every run in the history.
func (s *Store) LoadAll() ([]bench.Run, error) {
	return s.Load(0)
}

// LastTwo returns the two most recent runs, earlier first. The second
// return is false when the history holds fewer than two runs.
func (s *Store) LastTwo() (earlier, later bench.Run, ok bool, err error) {
	runs, err := s.Load(2)
	if err != nil {
		return bench.Run{}, bench.Run{}, false, err
	}
	if len(runs) < 2 {
		return bench.Run{}, bench.Run{}, false, nil
	}
	return runs[0], runs[1], true, nil
}
