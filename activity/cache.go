package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/solverpad/solverpad/metrics"
)

// DefaultPageSize is the submission page size; the remote API serves at most
// 1000 entries per request.
const DefaultPageSize = 1000

// DefaultPageDelay is the pause between history pages. The remote service
// has implicit rate limits; sequential paging with a fixed delay keeps us
// under them without retry coordination.
const DefaultPageDelay = 500 * time.Millisecond

// SolvedSet is the deduplicated collection of accepted problem identifiers
// for one account. It is rebuilt wholesale on every refresh; there is no
// incremental merge, so a changed remote account cleanly replaces the set.
type SolvedSet struct {
	Handle                  string    `json:"handle"`
	Problems                []string  `json:"problems"`
	LastRefreshedAt         time.Time `json:"last_refreshed_at"`
	TotalSubmissionsScanned int       `json:"total_submissions_scanned"`

	members map[string]struct{}
}

// Contains reports whether the problem identifier (e.g. "1794C") is solved.
func (s *SolvedSet) Contains(id string) bool {
	if s == nil {
		return false
	}
	if s.members == nil {
		s.members = make(map[string]struct{}, len(s.Problems))
		for _, p := range s.Problems {
			s.members[p] = struct{}{}
		}
	}
	_, ok := s.members[id]
	return ok
}

// Len returns the number of distinct solved problems.
func (s *SolvedSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Problems)
}

// Age returns how long ago the set was refreshed.
func (s *SolvedSet) Age() time.Duration {
	if s == nil {
		return 1<<63 - 1
	}
	return time.Since(s.LastRefreshedAt)
}

// Cache maintains the persisted solved-set for one handle.
//
// Mutating and reading methods are safe for concurrent use; the cache
// serializes access with a mutex since refresh is a read-modify-write over
// the whole persisted value.
type Cache struct {
	client    *Client
	handle    string
	path      string
	pageSize  int
	pageDelay time.Duration
	logger    *slog.Logger

	mu     sync.Mutex
	cached *SolvedSet
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithPageSize overrides the history page size.
func WithPageSize(n int) CacheOption {
	return func(c *Cache) { c.pageSize = n }
}

// WithPageDelay overrides the inter-page pause.
func WithPageDelay(d time.Duration) CacheOption {
	return func(c *Cache) { c.pageDelay = d }
}

// NewCache creates a solved-set cache persisted at path.
func NewCache(client *Client, handle, path string, logger *slog.Logger, opts ...CacheOption) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{
		client:    client,
		handle:    handle,
		path:      path,
		pageSize:  DefaultPageSize,
		pageDelay: DefaultPageDelay,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the solved-set, serving the cached copy when it is fresher
// than maxAge and running a full refresh otherwise.
func (c *Cache) Get(ctx context.Context, maxAge time.Duration) (*SolvedSet, error) {
	c.mu.Lock()
	if c.cached == nil {
		if set, err := c.loadLocked(); err == nil {
			c.cached = set
		}
	}
	if c.cached != nil && c.cached.Handle == c.handle && c.cached.Age() <= maxAge {
		set := c.cached
		c.mu.Unlock()
		return set, nil
	}
	c.mu.Unlock()

	return c.Refresh(ctx)
}

// Cached returns the persisted solved-set without ever touching the
// network, or nil when none exists for the configured handle. Callers that
// only annotate output use this so a stale cache cannot stall them.
func (c *Cache) Cached() *SolvedSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached == nil {
		if set, err := c.loadLocked(); err == nil {
			c.cached = set
		}
	}
	if c.cached == nil || c.cached.Handle != c.handle {
		return nil
	}
	return c.cached
}

// Refresh rebuilds the solved-set from the full remote submission history
// and replaces the persisted copy wholesale. Pages are fetched strictly in
// sequence with a fixed delay in between; a page shorter than the requested
// size signals the end of history.
func (c *Cache) Refresh(ctx context.Context) (*SolvedSet, error) {
	start := time.Now()

	seen := make(map[string]struct{})
	scanned := 0
	from := 1
	for {
		page, err := c.client.UserStatus(ctx, c.handle, from, c.pageSize)
		if err != nil {
			return nil, fmt.Errorf("refresh solved-set: %w", err)
		}
		metrics.ActivityRefreshPages.Inc()
		scanned += len(page)

		for _, sub := range page {
			if sub.Verdict == "OK" && sub.Problem.ContestID != 0 && sub.Problem.Index != "" {
				seen[sub.Problem.ID()] = struct{}{}
			}
		}

		if len(page) < c.pageSize {
			break
		}
		from += c.pageSize

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pageDelay):
		}
	}

	problems := make([]string, 0, len(seen))
	for id := range seen {
		problems = append(problems, id)
	}
	sort.Strings(problems)

	set := &SolvedSet{
		Handle:                  c.handle,
		Problems:                problems,
		LastRefreshedAt:         time.Now(),
		TotalSubmissionsScanned: scanned,
	}

	c.mu.Lock()
	c.cached = set
	err := c.persistLocked(set)
	c.mu.Unlock()
	if err != nil {
		c.logger.Warn("persist solved-set", "path", c.path, "error", err)
	}

	metrics.ActivityRefreshDuration.Observe(time.Since(start).Seconds())
	c.logger.Info("solved-set refreshed",
		"handle", c.handle,
		"solved", set.Len(),
		"scanned", scanned,
		"duration", time.Since(start))
	return set, nil
}

func (c *Cache) loadLocked() (*SolvedSet, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, err
	}
	var set SolvedSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse solved-set: %w", err)
	}
	return &set, nil
}

func (c *Cache) persistLocked(set *SolvedSet) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
