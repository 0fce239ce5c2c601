package problem

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RecordFile is the canonical record file inside a problem directory.
const RecordFile = "problem.json"

// Sample tests are additionally written as plain text files so the local
// test runner can consume them without parsing JSON.
const (
	SampleInputFile  = "in.txt"
	SampleOutputFile = "out.txt"
)

// ErrNotFound is returned by Load when the directory holds no record.
var ErrNotFound = errors.New("no problem record")

// Store persists one Record per problem directory as human-readable JSON.
type Store struct{}

// NewStore creates a problem record store.
func NewStore() *Store {
	return &Store{}
}

// Exists reports whether dir already holds a persisted record.
func (s *Store) Exists(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, RecordFile))
	return err == nil && !info.IsDir()
}

// Load reads the record persisted in dir.
func (s *Store) Load(dir string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(dir, RecordFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	return &rec, nil
}

// Save writes the record to dir, replacing any existing record wholesale.
// The write is temp-and-rename so a crashed process never leaves a
// half-written record behind.
func (s *Store) Save(dir string, rec *Record) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create problem directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, RecordFile), data); err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	if len(rec.Samples) > 0 {
		if err := s.writeSamples(dir, rec.Samples); err != nil {
			return err
		}
	}
	return nil
}

// SaveIfAbsent persists the record only when dir has no record yet.
// It reports whether a write happened. The pipeline uses this for
// placeholder records so a fallback never overwrites accepted data.
func (s *Store) SaveIfAbsent(dir string, rec *Record) (bool, error) {
	if s.Exists(dir) {
		return false, nil
	}
	if err := s.Save(dir, rec); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) writeSamples(dir string, samples []Sample) error {
	inputs := make([]string, 0, len(samples))
	outputs := make([]string, 0, len(samples))
	for _, sm := range samples {
		inputs = append(inputs, strings.TrimRight(sm.Input, "\n"))
		outputs = append(outputs, strings.TrimRight(sm.Output, "\n"))
	}
	if err := writeFileAtomic(filepath.Join(dir, SampleInputFile), []byte(strings.Join(inputs, "\n")+"\n")); err != nil {
		return fmt.Errorf("write sample inputs: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, SampleOutputFile), []byte(strings.Join(outputs, "\n")+"\n")); err != nil {
		return fmt.Errorf("write sample outputs: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
