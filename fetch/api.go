package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/solverpad/solverpad/extract"
	"github.com/solverpad/solverpad/problem"
)

// APIStrategy asks the platform's native API for the problem. Only
// Codeforces exposes one; its official API carries metadata without
// statement text, so this strategy mostly serves as a fast existence probe
// and succeeds outright only against API deployments that embed statements.
type APIStrategy struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

// NewAPIStrategy creates the native-API strategy. baseURL defaults to the
// official Codeforces API when empty.
func NewAPIStrategy(timeout time.Duration, baseURL string) *APIStrategy {
	if baseURL == "" {
		baseURL = "https://codeforces.com/api"
	}
	return &APIStrategy{
		client:  newHTTPClient(timeout),
		baseURL: baseURL,
		timeout: timeout,
	}
}

func (s *APIStrategy) Name() string { return "api" }

func (s *APIStrategy) Timeout() time.Duration { return s.timeout }

type apiEnvelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

// Acquire fetches contest.standings for the key's contest and maps the
// matching problem object. A FAILED envelope ("contest not found") is an
// authoritative rejection and falls through like any other soft failure.
func (s *APIStrategy) Acquire(ctx context.Context, key problem.Key) (*problem.Record, error) {
	if key.Platform != problem.PlatformCodeforces {
		return nil, nil
	}

	q := url.Values{}
	q.Set("contestId", key.ContestID)
	q.Set("from", "1")
	q.Set("count", "1")
	body, err := fetchDocument(ctx, s.client, s.baseURL+"/contest.standings?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse api envelope: %w", err)
	}
	if env.Status != "OK" {
		return nil, fmt.Errorf("api error: %s", env.Comment)
	}

	var result struct {
		Problems []json.RawMessage `json:"problems"`
	}
	if err := json.Unmarshal(env.Result, &result); err != nil {
		return nil, fmt.Errorf("parse standings result: %w", err)
	}

	for _, raw := range result.Problems {
		var head struct {
			Index string `json:"index"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			continue
		}
		if head.Index == key.Index {
			return extract.FromAPI(raw, key), nil
		}
	}
	return nil, fmt.Errorf("problem %s not in contest %s", key.Index, key.ContestID)
}
