package llm

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies a dispatch failure. Classification happens once, at the
// HTTP boundary; callers branch on the kind, never on status codes or
// transport error strings.
type Kind string

const (
	// KindCredential covers rejected or missing API keys (401/403).
	KindCredential Kind = "credential"
	// KindTimeout covers deadline expiry, whether from the fixed round-trip
	// timeout or the caller's context.
	KindTimeout Kind = "timeout"
	// KindNetwork covers transport failures before an HTTP status arrived.
	KindNetwork Kind = "network"
	// KindProvider covers everything the remote end rejected or garbled:
	// non-2xx statuses outside the credential range and unparseable bodies.
	KindProvider Kind = "provider"
)

// Failure is a classified dispatch error. Dispatch never retries; the
// caller renders f.Error() into the conversation and moves on.
type Failure struct {
	Kind     Kind
	Provider string
	err      error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s (%s)", f.err.Error(), f.Kind)
}

func (f *Failure) Unwrap() error {
	return f.err
}

// NewFailure wraps an error with its classified kind.
func NewFailure(kind Kind, provider string, err error) error {
	return &Failure{Kind: kind, Provider: provider, err: err}
}

// KindOf extracts the classified kind, or "" for unclassified errors.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// maxMinedBody bounds how much of an unstructured error body ends up in a
// user-visible message.
const maxMinedBody = 200

// mineErrorMessage digs the most specific human-readable message out of an
// error response body. Providers disagree on shape: OpenAI-style nests it
// under "error", others put "message" at the top level, and some return
// plain text.
func mineErrorMessage(body []byte) string {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &nested); err == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}

	var flat struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && flat.Message != "" {
		return flat.Message
	}

	raw := string(body)
	if len(raw) > maxMinedBody {
		raw = raw[:maxMinedBody] + "..."
	}
	return raw
}
