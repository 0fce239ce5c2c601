// Package llm sends assembled conversations to an AI provider and classifies
// what went wrong when they fail. A dispatch is exactly one round trip: no
// retries, no fallback chain. The failure is rendered into the conversation
// by the caller, so a flaky dispatch costs one visible error turn, not a
// stall.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/solverpad/solverpad/metrics"
)

// maxResponseSize limits the response body to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// DefaultTimeout bounds a single dispatch round trip.
const DefaultTimeout = 45 * time.Second

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`    // "system", "user", or "assistant"
	Content string `json:"content"` // Message content
}

// Request defines a completion request against one concrete endpoint.
type Request struct {
	// Provider names the registered wire-shape adapter.
	Provider string

	// Model is the model identifier sent to the provider.
	Model string

	// BaseURL overrides the provider's default endpoint. Empty uses the
	// provider default.
	BaseURL string

	// Messages is the assembled conversation, oldest first.
	Messages []Message

	// Temperature controls randomness. nil uses the endpoint default.
	Temperature *float64

	// MaxTokens limits response length. 0 uses the endpoint default.
	MaxTokens int
}

// TokenUsage represents token consumption details for a call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response contains the completion result.
type Response struct {
	// RequestID uniquely identifies this call for log correlation.
	RequestID string

	// Content is the generated text.
	Content string

	// Model is the model the provider reports having used.
	Model string

	// Usage contains token consumption metrics, when the provider sends them.
	Usage TokenUsage

	// FinishReason indicates why generation stopped.
	FinishReason string
}

// Client performs single-shot completions.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// NewClient creates a dispatch client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends the conversation and returns the provider's reply. Any
// error it returns is a *Failure; classification happens here and nowhere
// else.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if len(req.Messages) == 0 {
		return nil, NewFailure(KindProvider, req.Provider, fmt.Errorf("at least one message is required"))
	}

	provider := GetProvider(req.Provider)
	if provider == nil {
		return nil, NewFailure(KindProvider, req.Provider, fmt.Errorf("unknown provider: %s", req.Provider))
	}

	requestID := uuid.New().String()
	url := provider.BuildURL(req.BaseURL)

	body, err := provider.BuildRequestBody(req.Model, req.Messages, req.Temperature, req.MaxTokens)
	if err != nil {
		return nil, NewFailure(KindProvider, req.Provider, fmt.Errorf("build request body: %w", err))
	}

	c.logger.Debug("dispatching conversation",
		"request_id", requestID,
		"provider", req.Provider,
		"model", req.Model,
		"messages", len(req.Messages))
	metrics.DispatchRequests.WithLabelValues(req.Provider).Inc()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, c.fail(requestID, KindProvider, req.Provider, fmt.Errorf("create HTTP request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	provider.SetHeaders(httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		kind := KindNetwork
		if isTimeout(err) {
			kind = KindTimeout
		}
		return nil, c.fail(requestID, kind, req.Provider, fmt.Errorf("request %s: %w", req.Provider, err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, c.fail(requestID, KindNetwork, req.Provider, fmt.Errorf("read response body: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		kind := KindProvider
		if httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden {
			kind = KindCredential
		}
		msg := mineErrorMessage(respBody)
		return nil, c.fail(requestID, kind, req.Provider,
			fmt.Errorf("%s returned status %d: %s", req.Provider, httpResp.StatusCode, msg))
	}

	resp, err := provider.ParseResponse(respBody, req.Model)
	if err != nil {
		return nil, c.fail(requestID, KindProvider, req.Provider, err)
	}
	resp.RequestID = requestID

	c.logger.Debug("dispatch complete",
		"request_id", requestID,
		"model", resp.Model,
		"finish_reason", resp.FinishReason,
		"total_tokens", resp.Usage.TotalTokens)
	return resp, nil
}

func (c *Client) fail(requestID string, kind Kind, provider string, err error) error {
	metrics.DispatchFailures.WithLabelValues(string(kind)).Inc()
	c.logger.Warn("dispatch failed",
		"request_id", requestID,
		"provider", provider,
		"kind", string(kind),
		"error", err)
	return NewFailure(kind, provider, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
