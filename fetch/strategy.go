// Package fetch acquires problem records from unreliable remote sources.
// An ordered list of strategies is tried in sequence under a uniform
// timeout/validate/record-and-continue loop; the terminal placeholder
// strategy guarantees the pipeline never leaves the caller empty-handed.
package fetch

import (
	"context"
	"time"

	"github.com/solverpad/solverpad/problem"
)

// Strategy is one concrete way of acquiring a problem record.
//
// A strategy returns (nil, nil) or (nil, err) to signal "try the next one";
// errors never abort the pipeline. A non-nil record still has to pass
// validation before it is accepted.
type Strategy interface {
	// Name identifies the strategy in attempt logs and metrics.
	Name() string

	// Timeout bounds one invocation of the strategy, including any
	// internal retries.
	Timeout() time.Duration

	// Acquire attempts to produce a record for the key.
	Acquire(ctx context.Context, key problem.Key) (*problem.Record, error)
}

// Outcome classifies one strategy attempt.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeSoftFail Outcome = "soft_fail"
	OutcomeInvalid  Outcome = "invalid"
)

// Attempt is the ephemeral per-strategy diagnostic record. Attempts are
// never persisted; they feed logs and metrics and are discarded once the
// pipeline resolves.
type Attempt struct {
	Strategy    string
	StartedAt   time.Time
	Duration    time.Duration
	Outcome     Outcome
	Detail      string
	PayloadSize int
}
