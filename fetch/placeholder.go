package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/solverpad/solverpad/problem"
)

// PlaceholderStrategy is the terminal, non-network strategy. It always
// succeeds, so exhaustion of the real strategies still hands the caller a
// usable record whose body carries the source URL for manual follow-up.
type PlaceholderStrategy struct{}

// NewPlaceholderStrategy creates the terminal fallback strategy.
func NewPlaceholderStrategy() *PlaceholderStrategy {
	return &PlaceholderStrategy{}
}

func (s *PlaceholderStrategy) Name() string { return "placeholder" }

func (s *PlaceholderStrategy) Timeout() time.Duration { return time.Second }

func (s *PlaceholderStrategy) Acquire(_ context.Context, key problem.Key) (*problem.Record, error) {
	title := key.Index + "."
	if key.Index == "" {
		title = key.ID()
	}
	return &problem.Record{
		Title:     title,
		Platform:  key.Platform,
		ContestID: key.ContestID,
		Index:     key.Index,
		SourceURL: key.URL(),
		StatementBody: fmt.Sprintf(
			"The problem statement could not be fetched automatically.\n\n"+
				"Open the problem in a browser and paste the statement here if you "+
				"want it available to the assistant:\n\n%s\n\n"+
				"Sample tests were not retrieved either; add them to %s and %s "+
				"manually to run local tests.",
			key.URL(), problem.SampleInputFile, problem.SampleOutputFile),
		Placeholder: true,
	}, nil
}
