package chat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solverpad/solverpad/llm"
	"github.com/solverpad/solverpad/problem"
	"github.com/solverpad/solverpad/session"
)

// stubCompleter captures the assembled request and returns a canned reply.
type stubCompleter struct {
	lastReq llm.Request
	reply   string
	err     error
}

func (s *stubCompleter) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Content: s.reply}, nil
}

type stubAcquirer struct {
	key    problem.Key
	record *problem.Record
	calls  int
}

func (s *stubAcquirer) Acquire(_ context.Context, key problem.Key, dir string) (*problem.Record, error) {
	s.calls++
	s.key = key
	return s.record, nil
}

func newTestService(t *testing.T, completer Completer, acquirer Acquirer, root string) (*Service, *session.Store) {
	t.Helper()
	sessions, err := session.NewStore(filepath.Join(t.TempDir(), "sessions.json"), nil)
	require.NoError(t, err)
	svc := NewService(sessions, problem.NewStore(), acquirer, completer, Settings{
		Provider:      "custom",
		Model:         "test-model",
		Platform:      problem.PlatformCodeforces,
		WorkspaceRoot: root,
	}, nil)
	return svc, sessions
}

func TestDispatchRecordsBothTurns(t *testing.T) {
	completer := &stubCompleter{reply: "try a segment tree"}
	svc, sessions := newTestService(t, completer, nil, "")

	reply, err := svc.Dispatch(context.Background(), session.GlobalID, "data structure for range sums?", "")
	require.NoError(t, err)
	assert.Equal(t, "try a segment tree", reply)

	sess, ok := sessions.Get(session.GlobalID)
	require.True(t, ok)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, session.RoleUser, sess.Messages[0].Role)
	assert.Equal(t, "data structure for range sums?", sess.Messages[0].Content)
	assert.Equal(t, session.RoleAssistant, sess.Messages[1].Role)
	assert.Equal(t, "try a segment tree", sess.Messages[1].Content)
}

func TestDispatchAssemblesSystemHistoryUser(t *testing.T) {
	completer := &stubCompleter{reply: "ok"}
	svc, sessions := newTestService(t, completer, nil, "")

	// 14 prior turns; only the last 10 may travel.
	for i := 0; i < 14; i++ {
		role := session.RoleUser
		if i%2 == 1 {
			role = session.RoleAssistant
		}
		require.NoError(t, sessions.Append(session.GlobalID, role, fmt.Sprintf("turn %d", i)))
	}

	_, err := svc.Dispatch(context.Background(), session.GlobalID, "final question", "")
	require.NoError(t, err)

	msgs := completer.lastReq.Messages
	require.Len(t, msgs, 1+10+1, "system + trimmed history + user")
	assert.Equal(t, "system", msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "competitive programming assistant")
	assert.Equal(t, "turn 4", msgs[1].Content, "history keeps the most recent turns, oldest first")
	assert.Equal(t, "turn 13", msgs[10].Content)
	assert.Equal(t, "final question", msgs[11].Content)
	assert.Equal(t, "user", msgs[11].Role)
}

func TestDispatchAppendsFailureAsTurn(t *testing.T) {
	completer := &stubCompleter{
		err: llm.NewFailure(llm.KindCredential, "openai", fmt.Errorf("status 401")),
	}
	svc, sessions := newTestService(t, completer, nil, "")

	rendered, err := svc.Dispatch(context.Background(), session.GlobalID, "hello?", "")
	require.Error(t, err)
	assert.Equal(t, llm.KindCredential, llm.KindOf(err))
	assert.Contains(t, rendered, "credentials")

	sess, ok := sessions.Get(session.GlobalID)
	require.True(t, ok)
	require.Len(t, sess.Messages, 2, "the failed exchange still lands in the log")
	assert.Equal(t, session.RoleAssistant, sess.Messages[1].Role)
	assert.Equal(t, rendered, sess.Messages[1].Content)
}

func TestDispatchAttachesProblemAndCode(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "2112", "B")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	rec := &problem.Record{
		Title:         "B. Shrinking Array",
		Platform:      problem.PlatformCodeforces,
		ContestID:     "2112",
		Index:         "B",
		StatementBody: "Given an array, shrink it.",
		TimeLimit:     "2 seconds",
		MemoryLimit:   "256 megabytes",
		Samples:       []problem.Sample{{Input: "3\n2 1 2\n", Output: "1\n"}},
	}
	require.NoError(t, problem.NewStore().Save(dir, rec))

	codePath := filepath.Join(dir, "main.cpp")
	require.NoError(t, os.WriteFile(codePath, []byte("#include <bits/stdc++.h>\n"), 0o644))

	completer := &stubCompleter{reply: "looks fine"}
	svc, sessions := newTestService(t, completer, nil, root)

	sess, err := sessions.GetOrCreate(codePath)
	require.NoError(t, err)

	_, err = svc.Dispatch(context.Background(), sess.ID, "review my solution", "")
	require.NoError(t, err)

	system := completer.lastReq.Messages[0].Content
	assert.Contains(t, system, "B. Shrinking Array")
	assert.Contains(t, system, "Given an array, shrink it.")
	assert.Contains(t, system, "2 1 2", "samples ride along")
	assert.Contains(t, system, "main.cpp")
	assert.Contains(t, system, "```cpp\n#include <bits/stdc++.h>\n```")
}

func TestDispatchHintOverridesAssociation(t *testing.T) {
	dir := t.TempDir()
	hinted := filepath.Join(dir, "alt.py")
	require.NoError(t, os.WriteFile(hinted, []byte("print(42)\n"), 0o644))

	completer := &stubCompleter{reply: "ok"}
	svc, _ := newTestService(t, completer, nil, "")

	_, err := svc.Dispatch(context.Background(), session.GlobalID, "check this", hinted)
	require.NoError(t, err)
	assert.Contains(t, completer.lastReq.Messages[0].Content, "print(42)")
	assert.Contains(t, completer.lastReq.Messages[0].Content, "alt.py")
}

func TestDispatchAcquiresMissingRecord(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "1794", "C1")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	codePath := filepath.Join(dir, "main.cpp")
	require.NoError(t, os.WriteFile(codePath, []byte("int main(){}\n"), 0o644))

	acquirer := &stubAcquirer{record: &problem.Record{
		Title:         "C1. Scoring Subsequences",
		StatementBody: "Pick a subsequence.",
	}}
	completer := &stubCompleter{reply: "ok"}
	svc, sessions := newTestService(t, completer, acquirer, root)

	sess, err := sessions.GetOrCreate(codePath)
	require.NoError(t, err)

	_, err = svc.Dispatch(context.Background(), sess.ID, "what now?", "")
	require.NoError(t, err)

	assert.Equal(t, 1, acquirer.calls)
	assert.Equal(t, "1794", acquirer.key.ContestID)
	assert.Equal(t, "C1", acquirer.key.Index)
	assert.Contains(t, completer.lastReq.Messages[0].Content, "C1. Scoring Subsequences")
}

func TestDispatchUnknownSession(t *testing.T) {
	svc, _ := newTestService(t, &stubCompleter{reply: "ok"}, nil, "")
	_, err := svc.Dispatch(context.Background(), "deadbeef", "hi", "")
	assert.Error(t, err)
}
