// Package chat assembles problem, code and conversation history into a
// single dispatch and records both sides of the exchange in the session log.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/solverpad/solverpad/llm"
	"github.com/solverpad/solverpad/problem"
	"github.com/solverpad/solverpad/session"
)

// maxHistoryTurns caps how much prior conversation rides along with a
// dispatch. Older turns stay in the session log but are not sent.
const maxHistoryTurns = 10

// maxCodeBytes bounds how much of the solution file is attached.
const maxCodeBytes = 64 * 1024

// sourcePattern matches the solution file inside a problem directory.
const sourcePattern = "*.{cpp,cc,cxx,c,py,go,java,rs,kt}"

// Completer is the one-shot dispatch dependency. *llm.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// Acquirer resolves a problem record, fetching it if necessary.
// *fetch.Pipeline satisfies it.
type Acquirer interface {
	Acquire(ctx context.Context, key problem.Key, dir string) (*problem.Record, error)
}

// Settings selects the AI backend and the workspace the service operates in.
type Settings struct {
	Provider    string
	Model       string
	BaseURL     string
	Temperature *float64
	MaxTokens   int

	// Platform is assumed for problems resolved from workspace paths.
	Platform problem.Platform

	// WorkspaceRoot is where problem directories live
	// ({root}/{contestId}/{index}/).
	WorkspaceRoot string
}

// Service wires sessions, problem records and the dispatch client together.
type Service struct {
	sessions *session.Store
	records  *problem.Store
	acquirer Acquirer
	client   Completer
	settings Settings
	logger   *slog.Logger
}

// NewService creates a chat service. acquirer may be nil, in which case a
// missing problem record is simply not attached.
func NewService(sessions *session.Store, records *problem.Store, acquirer Acquirer, client Completer, settings Settings, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions: sessions,
		records:  records,
		acquirer: acquirer,
		client:   client,
		settings: settings,
		logger:   logger,
	}
}

// Dispatch sends userMessage on the given session and returns the reply.
// fileHint, when non-empty and readable, overrides the session's file
// association for this dispatch.
//
// Both outcomes land in the session log: the user turn before the round
// trip, and either the reply or a rendered failure after it. The classified
// error is returned alongside so the host can style it, but the
// conversation is already consistent either way.
func (s *Service) Dispatch(ctx context.Context, sessionID, userMessage, fileHint string) (string, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return "", fmt.Errorf("unknown session %q", sessionID)
	}

	env := s.resolveEnvironment(ctx, sess, fileHint)
	messages := s.assemble(env, sess.Messages, userMessage)

	if err := s.sessions.Append(sessionID, session.RoleUser, userMessage); err != nil {
		return "", fmt.Errorf("record user turn: %w", err)
	}

	resp, err := s.client.Complete(ctx, llm.Request{
		Provider:    s.settings.Provider,
		Model:       s.settings.Model,
		BaseURL:     s.settings.BaseURL,
		Messages:    messages,
		Temperature: s.settings.Temperature,
		MaxTokens:   s.settings.MaxTokens,
	})
	if err != nil {
		rendered := renderFailure(err)
		if aerr := s.sessions.Append(sessionID, session.RoleAssistant, rendered); aerr != nil {
			s.logger.Warn("record failure turn", "session", sessionID, "error", aerr)
		}
		return rendered, err
	}

	if err := s.sessions.Append(sessionID, session.RoleAssistant, resp.Content); err != nil {
		s.logger.Warn("record assistant turn", "session", sessionID, "error", err)
	}
	return resp.Content, nil
}

// environment is everything attached to a dispatch besides the conversation.
type environment struct {
	record   *problem.Record
	filePath string
	code     string
}

// resolveEnvironment finds the effective solution file and its problem
// record. Every step is best-effort: a chat about nothing in particular is
// still a valid dispatch.
func (s *Service) resolveEnvironment(ctx context.Context, sess *session.Session, fileHint string) environment {
	var env environment

	env.filePath = s.effectiveFile(sess, fileHint)
	if env.filePath != "" {
		data, err := os.ReadFile(env.filePath)
		if err != nil {
			s.logger.Debug("read solution file", "path", env.filePath, "error", err)
		} else {
			if len(data) > maxCodeBytes {
				data = data[:maxCodeBytes]
			}
			env.code = string(data)
		}
	}

	dir := s.problemDir(sess, env.filePath)
	if dir == "" {
		return env
	}

	rec, err := s.records.Load(dir)
	if err == nil {
		env.record = rec
		return env
	}
	if !errors.Is(err, problem.ErrNotFound) {
		s.logger.Warn("load problem record", "dir", dir, "error", err)
		return env
	}

	if s.acquirer != nil && sess.ContestID != "" && sess.ProblemIndex != "" {
		key := problem.Key{
			Platform:  s.settings.Platform,
			ContestID: sess.ContestID,
			Index:     sess.ProblemIndex,
		}
		rec, err := s.acquirer.Acquire(ctx, key, dir)
		if err != nil {
			s.logger.Warn("acquire problem record", "key", key.String(), "error", err)
			return env
		}
		env.record = rec
	}
	return env
}

// effectiveFile picks the solution file for this dispatch: an explicit hint
// wins over the session association, and either must actually be readable.
func (s *Service) effectiveFile(sess *session.Session, hint string) string {
	if hint != "" && readable(hint) {
		return hint
	}
	if sess.FilePath != "" && readable(sess.FilePath) {
		return sess.FilePath
	}

	// No live file, but an associated problem directory may still hold one.
	if dir := s.problemDir(sess, ""); dir != "" {
		matches, err := doublestar.FilepathGlob(filepath.Join(dir, sourcePattern))
		if err == nil && len(matches) > 0 {
			return matches[0]
		}
	}
	return ""
}

// problemDir locates the directory holding the problem record: the solution
// file's directory when known, otherwise the workspace-layout path derived
// from the session's problem association.
func (s *Service) problemDir(sess *session.Session, filePath string) string {
	if filePath != "" {
		return filepath.Dir(filePath)
	}
	if s.settings.WorkspaceRoot != "" && sess.ContestID != "" && sess.ProblemIndex != "" {
		return filepath.Join(s.settings.WorkspaceRoot, sess.ContestID, sess.ProblemIndex)
	}
	return ""
}

// renderFailure turns a classified dispatch error into a conversation turn.
func renderFailure(err error) string {
	switch llm.KindOf(err) {
	case llm.KindCredential:
		return "The AI provider rejected the configured credentials. Check your API key and try again."
	case llm.KindTimeout:
		return "The AI provider did not answer in time. The request was not retried; send your message again."
	case llm.KindNetwork:
		return fmt.Sprintf("Could not reach the AI provider: %v", err)
	default:
		return fmt.Sprintf("The AI provider returned an error: %v", err)
	}
}

func readable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
