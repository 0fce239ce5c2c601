// Package problem defines the normalized problem record shared by the
// acquisition pipeline, the durable store, and the chat context builder.
package problem

import (
	"fmt"
	"strings"
)

// Platform identifies a remote judge.
type Platform string

const (
	PlatformCodeforces Platform = "codeforces"
	PlatformAtCoder    Platform = "atcoder"
	PlatformCSES       Platform = "cses"
)

// ParsePlatform normalizes a platform name. Unknown names default to
// Codeforces, the primary platform.
func ParsePlatform(s string) Platform {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "atcoder":
		return PlatformAtCoder
	case "cses":
		return PlatformCSES
	default:
		return PlatformCodeforces
	}
}

// Key identifies a single remote problem.
type Key struct {
	Platform  Platform `json:"platform"`
	ContestID string   `json:"contest_id"`
	Index     string   `json:"index"`
}

// ID returns the compact problem identifier used for solved-set membership,
// e.g. "1794C".
func (k Key) ID() string {
	return k.ContestID + k.Index
}

// URL constructs the canonical problem page URL for the key's platform.
func (k Key) URL() string {
	switch k.Platform {
	case PlatformAtCoder:
		// AtCoder task slugs are lowercase: abc321_a
		return fmt.Sprintf("https://atcoder.jp/contests/%s/tasks/%s_%s",
			k.ContestID, k.ContestID, strings.ToLower(k.Index))
	case PlatformCSES:
		return fmt.Sprintf("https://cses.fi/problemset/task/%s", k.ContestID)
	default:
		return fmt.Sprintf("https://codeforces.com/contest/%s/problem/%s", k.ContestID, k.Index)
	}
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s%s", k.Platform, k.ContestID, k.Index)
}

// Sample is one sample test: raw input and expected output.
type Sample struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Record is a normalized problem statement plus sample tests.
// Records are immutable once written; a re-fetch replaces the whole record.
type Record struct {
	Title         string   `json:"title"`
	Platform      Platform `json:"platform"`
	ContestID     string   `json:"contest_id"`
	Index         string   `json:"index"`
	StatementBody string   `json:"statement"`
	TimeLimit     string   `json:"time_limit,omitempty"`
	MemoryLimit   string   `json:"memory_limit,omitempty"`
	SourceURL     string   `json:"source_url"`
	Samples       []Sample `json:"samples"`

	// Placeholder marks a record produced by the terminal fallback strategy
	// rather than real acquisition. Placeholder records never overwrite
	// previously accepted data.
	Placeholder bool `json:"placeholder,omitempty"`
}

// Key returns the record's problem key.
func (r *Record) Key() Key {
	return Key{Platform: r.Platform, ContestID: r.ContestID, Index: r.Index}
}
