// Package session owns the persisted chat session table. Sessions are keyed
// by an id derived from their associated file path; the table is the single
// shared mutable value, rewritten wholesale on every mutation.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"time"
)

// GlobalID is the id of the well-known global session. The global session
// always exists; deleting it resets its message log instead of removing it.
const GlobalID = "global"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is a persisted conversation thread, optionally associated with a
// file on disk. Callers outside the store hold ids, never live pointers into
// the table; the store hands out copies.
type Session struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	FilePath     string    `json:"file_path,omitempty"`
	ContestID    string    `json:"contest_id,omitempty"`
	ProblemIndex string    `json:"problem_index,omitempty"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *Session) clone() *Session {
	c := *s
	c.Messages = make([]Message, len(s.Messages))
	copy(c.Messages, s.Messages)
	return &c
}

// DeriveID computes the stable session id for a file path: a short hash of
// the cleaned absolute path, so repeated requests for the same file resolve
// to the same session. An empty path names the global session.
func DeriveID(path string) string {
	if path == "" {
		return GlobalID
	}
	sum := sha256.Sum256([]byte(normalizePath(path)))
	return hex.EncodeToString(sum[:])[:16]
}

// freshID appends a timestamp suffix so an explicit "new chat" never
// collides with the stable id for the same file.
func freshID(path string) string {
	return fmt.Sprintf("%s-%d", DeriveID(path), time.Now().UnixNano())
}

func normalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Clean(abs)
}

// problemDirPattern matches .../<contestId>/<index>/ path tails, the layout
// the workspace generator produces (e.g. contests/2112/B/main.cpp).
var problemDirPattern = regexp.MustCompile(`(?:^|[/\\])(\d+)[/\\]([A-Z]\d?)[/\\][^/\\]+$`)

// deriveProblem recovers contest id and problem index from a solution path,
// when the path follows the workspace layout.
func deriveProblem(path string) (contestID, index string) {
	m := problemDirPattern.FindStringSubmatch(normalizePath(path))
	if m == nil {
		return "", ""
	}
	return m[1], m[2]
}

func titleFor(path string) string {
	if path == "" {
		return "Global chat"
	}
	if contest, index := deriveProblem(path); contest != "" {
		return contest + index
	}
	return filepath.Base(path)
}
