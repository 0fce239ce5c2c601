package fetch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solverpad/solverpad/problem"
)

var testKey = problem.Key{Platform: problem.PlatformCodeforces, ContestID: "2112", Index: "B"}

type stubStrategy struct {
	name  string
	rec   *problem.Record
	err   error
	calls int
}

func (s *stubStrategy) Name() string           { return s.name }
func (s *stubStrategy) Timeout() time.Duration { return time.Second }

func (s *stubStrategy) Acquire(context.Context, problem.Key) (*problem.Record, error) {
	s.calls++
	return s.rec, s.err
}

func goodRecord() *problem.Record {
	return &problem.Record{
		Title:         "B. Shrinking Array",
		Platform:      problem.PlatformCodeforces,
		ContestID:     "2112",
		Index:         "B",
		StatementBody: strings.Repeat("You are given an array of n integers and must make it beautiful. ", 5),
		SourceURL:     testKey.URL(),
		Samples:       []problem.Sample{{Input: "3\n", Output: "1\n"}},
	}
}

func TestPipelineExhaustionYieldsPlaceholder(t *testing.T) {
	dir := t.TempDir()
	store := problem.NewStore()

	network := &stubStrategy{name: "api", err: errors.New("connection refused")}
	scrape := &stubStrategy{name: "scrape", err: errors.New("HTTP 503")}
	p := NewPipeline(store, nil, network, scrape)

	rec, err := p.Acquire(context.Background(), testKey, dir)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Placeholder)
	assert.Contains(t, rec.StatementBody, testKey.URL())
	assert.NoError(t, rec.Validate())

	// The placeholder was persisted because nothing better existed.
	loaded, err := store.Load(dir)
	require.NoError(t, err)
	assert.True(t, loaded.Placeholder)

	attempts := p.Attempts()
	require.Len(t, attempts, 3)
	assert.Equal(t, OutcomeSoftFail, attempts[0].Outcome)
	assert.Equal(t, OutcomeSoftFail, attempts[1].Outcome)
	assert.Equal(t, OutcomeSuccess, attempts[2].Outcome)
}

func TestPipelineAcceptsFirstValidRecord(t *testing.T) {
	dir := t.TempDir()
	store := problem.NewStore()

	failing := &stubStrategy{name: "api", err: errors.New("timeout")}
	succeeding := &stubStrategy{name: "scrape", rec: goodRecord()}
	never := &stubStrategy{name: "extra", rec: goodRecord()}
	p := NewPipeline(store, nil, failing, succeeding, never)

	rec, err := p.Acquire(context.Background(), testKey, dir)
	require.NoError(t, err)
	assert.False(t, rec.Placeholder)
	assert.Equal(t, "B. Shrinking Array", rec.Title)
	assert.Equal(t, 0, never.calls, "later strategies must not run after acceptance")

	loaded, err := store.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, rec.StatementBody, loaded.StatementBody)
}

func TestPipelineInvalidDataIsNotTrusted(t *testing.T) {
	dir := t.TempDir()
	store := problem.NewStore()

	announcement := goodRecord()
	announcement.StatementBody = "Codeforces Round 900 (Div. 3) — register now to take part! " +
		strings.Repeat("The round starts soon and will feature six problems. ", 3)
	bad := &stubStrategy{name: "scrape", rec: announcement}
	p := NewPipeline(store, nil, bad)

	rec, err := p.Acquire(context.Background(), testKey, dir)
	require.NoError(t, err)
	assert.True(t, rec.Placeholder, "invalid output falls through to the placeholder")

	attempts := p.Attempts()
	require.Len(t, attempts, 2)
	assert.Equal(t, OutcomeInvalid, attempts[0].Outcome)
	assert.Contains(t, attempts[0].Detail, "non-problem phrase")
}

func TestPipelineNeverDowngradesPersistedRecord(t *testing.T) {
	dir := t.TempDir()
	store := problem.NewStore()

	// First run: a real record is accepted and persisted.
	first := NewPipeline(store, nil, &stubStrategy{name: "scrape", rec: goodRecord()})
	rec, err := first.Acquire(context.Background(), testKey, dir)
	require.NoError(t, err)
	require.False(t, rec.Placeholder)

	// Second run: every real strategy fails.
	second := NewPipeline(store, nil, &stubStrategy{name: "scrape", err: errors.New("HTTP 503")})
	rec, err = second.Acquire(context.Background(), testKey, dir)
	require.NoError(t, err)

	// The caller gets the previously accepted record back, and disk is
	// untouched.
	assert.False(t, rec.Placeholder)
	assert.Equal(t, "B. Shrinking Array", rec.Title)

	loaded, err := store.Load(dir)
	require.NoError(t, err)
	assert.False(t, loaded.Placeholder)
	assert.Equal(t, goodRecord().StatementBody, loaded.StatementBody)
}

func TestPipelineHonorsCancellation(t *testing.T) {
	store := problem.NewStore()
	strat := &stubStrategy{name: "api", err: errors.New("unreachable")}
	p := NewPipeline(store, nil, strat)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Acquire(ctx, testKey, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, strat.calls, "cancellation is checked before each strategy")
}

func TestPipelineEmptyDirSkipsPersistence(t *testing.T) {
	p := NewPipeline(problem.NewStore(), nil, &stubStrategy{name: "scrape", rec: goodRecord()})
	rec, err := p.Acquire(context.Background(), testKey, "")
	require.NoError(t, err)
	assert.NotNil(t, rec)
}
