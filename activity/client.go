// Package activity tracks a user's remote judge activity: it pages through
// the full submission history, reduces it to a deduplicated solved-set, and
// caches the result with a staleness TTL.
package activity

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://codeforces.com/api"

// maxResponseSize caps an API response body. A 1000-submission page is well
// under this.
const maxResponseSize = 20 * 1024 * 1024

// Submission is one entry of the remote submission history.
type Submission struct {
	ID                  int64   `json:"id"`
	CreationTimeSeconds int64   `json:"creationTimeSeconds"`
	Verdict             string  `json:"verdict"`
	Problem             Problem `json:"problem"`
}

// Problem is the problem reference embedded in a submission.
type Problem struct {
	ContestID int    `json:"contestId"`
	Index     string `json:"index"`
	Name      string `json:"name"`
	Rating    int    `json:"rating"`
}

// ID returns the compact problem identifier, e.g. "1794C".
func (p Problem) ID() string {
	return strconv.Itoa(p.ContestID) + p.Index
}

// RatingChange is one entry of the remote rating history.
type RatingChange struct {
	ContestID               int    `json:"contestId"`
	ContestName             string `json:"contestName"`
	RatingUpdateTimeSeconds int64  `json:"ratingUpdateTimeSeconds"`
	OldRating               int    `json:"oldRating"`
	NewRating               int    `json:"newRating"`
}

// APIError is a structured failure reported by the remote API envelope.
type APIError struct {
	Method  string
	Comment string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Method, e.Comment)
}

// Client talks to the Codeforces REST API. When key and secret are set,
// requests are signed; anonymous requests work for public data but are
// rate-limited more aggressively.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        string
	secret     string
}

// NewClient creates an API client. baseURL defaults to the official API when
// empty; key and secret are optional.
func NewClient(baseURL, key, secret string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		key:        key,
		secret:     secret,
	}
}

// UserStatus fetches one page of the user's submission history. from is
// 1-based, matching the remote offset cursor.
func (c *Client) UserStatus(ctx context.Context, handle string, from, count int) ([]Submission, error) {
	params := map[string]string{
		"handle": handle,
		"from":   strconv.Itoa(from),
		"count":  strconv.Itoa(count),
	}
	var subs []Submission
	if err := c.call(ctx, "user.status", params, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// ContestProblems fetches the problem list of a contest via a minimal
// contest.standings request (one standings row, full problem list).
func (c *Client) ContestProblems(ctx context.Context, contestID string) ([]Problem, error) {
	params := map[string]string{
		"contestId": contestID,
		"from":      "1",
		"count":     "1",
	}
	var standings struct {
		Problems []Problem `json:"problems"`
	}
	if err := c.call(ctx, "contest.standings", params, &standings); err != nil {
		return nil, err
	}
	return standings.Problems, nil
}

// UserRating fetches the user's full rating history.
func (c *Client) UserRating(ctx context.Context, handle string) ([]RatingChange, error) {
	var changes []RatingChange
	if err := c.call(ctx, "user.rating", map[string]string{"handle": handle}, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

func (c *Client) call(ctx context.Context, method string, params map[string]string, result any) error {
	if c.key != "" && c.secret != "" {
		c.sign(method, params)
	}

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+method+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%s: read body: %w", method, err)
	}

	var env struct {
		Status  string          `json:"status"`
		Comment string          `json:"comment"`
		Result  json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%s: HTTP %d: malformed envelope: %w", method, resp.StatusCode, err)
	}
	if env.Status != "OK" {
		return &APIError{Method: method, Comment: env.Comment}
	}
	if err := json.Unmarshal(env.Result, result); err != nil {
		return fmt.Errorf("%s: parse result: %w", method, err)
	}
	return nil
}

// sign adds apiKey/time/apiSig authentication parameters: a 6-character
// nonce, then SHA-512 over "rand/api/method?sortedParams#secret".
func (c *Client) sign(method string, params map[string]string) {
	params["apiKey"] = c.key
	params["time"] = strconv.FormatInt(time.Now().Unix(), 10)

	nonce := randomNonce(6)

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	payload := fmt.Sprintf("%s/api/%s?%s#%s", nonce, method, strings.Join(pairs, "&"), c.secret)
	sum := sha512.Sum512([]byte(payload))
	params["apiSig"] = nonce + hex.EncodeToString(sum[:])
}

const nonceAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomNonce(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = nonceAlphabet[rand.IntN(len(nonceAlphabet))]
	}
	return string(b)
}
