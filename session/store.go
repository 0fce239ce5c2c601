package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Store owns the session table. Every mutation persists the whole table
// synchronously (read-modify-write), so callers see mutations as atomic and
// should not assume high-frequency append performance.
type Store struct {
	path   string
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore loads (or initializes) the session table persisted at path.
// Sessions whose associated file no longer resolves to a readable file are
// kept with the association cleared; history is not destroyed just because a
// file moved.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:     path,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.sessions = make(map[string]*Session)
			s.ensureGlobalLocked()
			return nil
		}
		return fmt.Errorf("read session table: %w", err)
	}

	var table map[string]*Session
	if err := json.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("parse session table: %w", err)
	}

	for id, sess := range table {
		sess.ID = id
		if sess.FilePath != "" && !fileReadable(sess.FilePath) {
			s.logger.Debug("session file no longer readable, clearing association",
				"session", id, "path", sess.FilePath)
			sess.FilePath = ""
		}
	}
	s.sessions = table
	s.ensureGlobalLocked()
	return nil
}

func (s *Store) ensureGlobalLocked() {
	if _, ok := s.sessions[GlobalID]; !ok {
		s.sessions[GlobalID] = &Session{
			ID:        GlobalID,
			Title:     titleFor(""),
			Messages:  []Message{},
			CreatedAt: time.Now(),
		}
	}
}

// GetOrCreate resolves the session for a file path, creating it lazily on
// first access. An empty path resolves to the global session.
func (s *Store) GetOrCreate(path string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := DeriveID(path)
	if sess, ok := s.sessions[id]; ok {
		return sess.clone(), nil
	}

	sess := s.newSessionLocked(id, path)
	if err := s.persistLocked(); err != nil {
		delete(s.sessions, id)
		return nil, err
	}
	return sess.clone(), nil
}

// Create always makes a brand-new session for the path, with a timestamp
// suffix in the id so it cannot collide with the stable session for the
// same file.
func (s *Store) Create(path string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.newSessionLocked(freshID(path), path)
	if err := s.persistLocked(); err != nil {
		delete(s.sessions, sess.ID)
		return nil, err
	}
	return sess.clone(), nil
}

func (s *Store) newSessionLocked(id, path string) *Session {
	contest, index := deriveProblem(path)
	sess := &Session{
		ID:           id,
		Title:        titleFor(path),
		ContestID:    contest,
		ProblemIndex: index,
		Messages:     []Message{},
		CreatedAt:    time.Now(),
	}
	if path != "" {
		sess.FilePath = normalizePath(path)
	}
	s.sessions[id] = sess
	return sess
}

// Get returns a copy of the session, if it exists.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return sess.clone(), true
}

// Append adds a message to the session's log and persists the table.
// Appends are ordered by call order.
func (s *Store) Append(id, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("unknown session %q", id)
	}
	sess.Messages = append(sess.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	return s.persistLocked()
}

// Clear empties the session's message log, keeping the session itself.
func (s *Store) Clear(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("unknown session %q", id)
	}
	sess.Messages = []Message{}
	return s.persistLocked()
}

// Delete removes the session and reports whether it existed. The global
// session is never removed: deleting it resets the message log and reports
// success, so a global session always exists.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	if id == GlobalID {
		sess.Messages = []Message{}
	} else {
		delete(s.sessions, id)
	}
	if err := s.persistLocked(); err != nil {
		s.logger.Warn("persist session table", "error", err)
	}
	return true
}

// List returns copies of all sessions, oldest first.
func (s *Store) List() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *Store) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(s.sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session table: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session table: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session table: %w", err)
	}
	return nil
}

func fileReadable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
