package fetch

import (
	"context"
	"log/slog"
	"time"

	"github.com/solverpad/solverpad/metrics"
	"github.com/solverpad/solverpad/problem"
)

// Pipeline iterates an ordered strategy list until one produces a valid
// record. The caller-supplied context is checked between strategies, so an
// explicit cancellation aborts the pipeline; a hanging strategy is bounded
// only by its own timeout.
type Pipeline struct {
	strategies []Strategy
	store      *problem.Store
	logger     *slog.Logger

	// attempts from the most recent Acquire call, for diagnostics.
	lastAttempts []Attempt
}

// NewPipeline builds a pipeline over the given strategies. A placeholder
// strategy is always appended so Acquire cannot come back empty-handed.
func NewPipeline(store *problem.Store, logger *slog.Logger, strategies ...Strategy) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		strategies: append(strategies, NewPlaceholderStrategy()),
		store:      store,
		logger:     logger,
	}
}

// Acquire resolves a problem record for key and persists it under dir.
// It returns an error only when ctx is cancelled; every other failure is
// converted into fallback to the next strategy, and the terminal placeholder
// guarantees a non-nil record otherwise.
//
// Persistence rules: real records overwrite wholesale; a placeholder is
// written only when dir holds no record yet, so a degraded re-fetch can
// never replace previously accepted data.
func (p *Pipeline) Acquire(ctx context.Context, key problem.Key, dir string) (*problem.Record, error) {
	p.lastAttempts = p.lastAttempts[:0]

	for _, strat := range p.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec := p.tryStrategy(ctx, strat, key)
		if rec == nil {
			continue
		}
		return p.persist(dir, rec)
	}

	// Unreachable while the placeholder is terminal; kept so a
	// misconfigured pipeline fails loudly instead of returning nil, nil.
	return nil, context.Canceled
}

// Attempts returns the attempt log of the most recent Acquire call.
func (p *Pipeline) Attempts() []Attempt {
	return p.lastAttempts
}

func (p *Pipeline) tryStrategy(ctx context.Context, strat Strategy, key problem.Key) *problem.Record {
	sctx, cancel := context.WithTimeout(ctx, strat.Timeout())
	defer cancel()

	attempt := Attempt{Strategy: strat.Name(), StartedAt: time.Now()}
	rec, err := strat.Acquire(sctx, key)
	attempt.Duration = time.Since(attempt.StartedAt)

	switch {
	case err != nil:
		attempt.Outcome = OutcomeSoftFail
		attempt.Detail = err.Error()
	case rec == nil:
		attempt.Outcome = OutcomeSoftFail
		attempt.Detail = "no data"
	default:
		attempt.PayloadSize = len(rec.StatementBody)
		if verr := rec.Validate(); verr != nil {
			// Invalid output is trusted no more than a failure.
			attempt.Outcome = OutcomeInvalid
			attempt.Detail = verr.Error()
			rec = nil
		} else {
			attempt.Outcome = OutcomeSuccess
		}
	}

	p.lastAttempts = append(p.lastAttempts, attempt)
	metrics.FetchAttempts.WithLabelValues(attempt.Strategy, string(attempt.Outcome)).Inc()
	p.logger.Debug("acquisition strategy finished",
		"strategy", attempt.Strategy,
		"key", key.String(),
		"outcome", string(attempt.Outcome),
		"detail", attempt.Detail,
		"duration", attempt.Duration)
	return rec
}

func (p *Pipeline) persist(dir string, rec *problem.Record) (*problem.Record, error) {
	if dir == "" {
		return rec, nil
	}

	if rec.Placeholder {
		wrote, err := p.store.SaveIfAbsent(dir, rec)
		if err != nil {
			p.logger.Warn("persist placeholder record", "dir", dir, "error", err)
			return rec, nil
		}
		if !wrote {
			// Something better is already on disk; hand that back.
			if existing, err := p.store.Load(dir); err == nil {
				return existing, nil
			}
		}
		return rec, nil
	}

	if err := p.store.Save(dir, rec); err != nil {
		p.logger.Warn("persist problem record", "dir", dir, "error", err)
	}
	return rec, nil
}
