package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/solverpad/solverpad/extract"
	"github.com/solverpad/solverpad/problem"
)

// ScrapeStrategy fetches the public problem page and runs structured
// extraction on it. This is the primary remote document fetch: the page
// fetch itself is retried up to three times with linearly increasing
// backoff before the strategy is abandoned.
type ScrapeStrategy struct {
	client      *http.Client
	timeout     time.Duration
	maxAttempts int
	backoffStep time.Duration
	logger      *slog.Logger

	// urlFor is replaceable so tests can point the strategy at a local
	// server.
	urlFor func(problem.Key) string
}

// ScrapeOption configures a ScrapeStrategy.
type ScrapeOption func(*ScrapeStrategy)

// WithScrapeURL overrides problem page URL construction.
func WithScrapeURL(f func(problem.Key) string) ScrapeOption {
	return func(s *ScrapeStrategy) { s.urlFor = f }
}

// WithScrapeBackoff overrides the linear backoff step.
func WithScrapeBackoff(step time.Duration) ScrapeOption {
	return func(s *ScrapeStrategy) { s.backoffStep = step }
}

// NewScrapeStrategy creates the HTML scrape strategy.
func NewScrapeStrategy(timeout time.Duration, logger *slog.Logger, opts ...ScrapeOption) *ScrapeStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ScrapeStrategy{
		client:      newHTTPClient(timeout),
		timeout:     timeout,
		maxAttempts: 3,
		backoffStep: time.Second,
		logger:      logger,
		urlFor:      func(k problem.Key) string { return k.URL() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ScrapeStrategy) Name() string { return "scrape" }

// Timeout bounds the whole strategy, retries and backoff included.
func (s *ScrapeStrategy) Timeout() time.Duration {
	return time.Duration(s.maxAttempts)*s.timeout + 6*s.backoffStep
}

// Acquire fetches and extracts the problem page. Fetch failures are retried;
// an extraction miss is authoritative for this document and is not.
func (s *ScrapeStrategy) Acquire(ctx context.Context, key problem.Key) (*problem.Record, error) {
	url := s.urlFor(key)

	var doc []byte
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		var err error
		doc, err = fetchDocument(ctx, s.client, url)
		if err == nil {
			break
		}
		lastErr = err
		s.logger.Debug("problem page fetch failed",
			"key", key.String(), "attempt", attempt, "error", err)

		if attempt == s.maxAttempts {
			return nil, fmt.Errorf("fetch problem page: %w", lastErr)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * s.backoffStep):
		}
	}

	if rec := extract.FromHTML(doc, key); rec != nil {
		return rec, nil
	}
	if rec := extract.FromArticle(doc, key); rec != nil {
		return rec, nil
	}
	return nil, nil
}
