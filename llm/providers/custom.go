package providers

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/solverpad/solverpad/llm"
)

// CustomProvider targets any OpenAI-compatible endpoint (local inference
// servers, proxies). It reuses the chat-completions wire shape but leaves
// the URL and credentials to the operator.
type CustomProvider struct {
	OpenAIProvider
}

func init() {
	llm.RegisterProvider(&CustomProvider{})
}

// Name returns the provider identifier.
func (c *CustomProvider) Name() string {
	return "custom"
}

// BuildURL uses the configured base URL as-is when it already names a
// completions path, otherwise appends the standard one.
func (c *CustomProvider) BuildURL(baseURL string) string {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if strings.HasSuffix(baseURL, "/chat/completions") {
		return baseURL
	}
	return baseURL + "/v1/chat/completions"
}

// SetHeaders adds bearer authentication only when a key is configured;
// local endpoints usually run unauthenticated.
func (c *CustomProvider) SetHeaders(req *http.Request) {
	if apiKey := os.Getenv("CUSTOM_API_KEY"); apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
}

// maxFallbackBody bounds how much of an unrecognized response body is
// surfaced as content.
const maxFallbackBody = 4096

// ParseResponse is permissive: arbitrary endpoints only claim OpenAI
// compatibility, so it accepts the choices-array shape, then the
// content-array shape, and as a last resort returns the raw body itself as
// text — whatever the endpoint sent back is more useful than an opaque
// parse error.
func (c *CustomProvider) ParseResponse(body []byte, model string) (*llm.Response, error) {
	if resp, err := c.OpenAIProvider.ParseResponse(body, model); err == nil {
		return resp, nil
	}
	if resp, err := (&AnthropicProvider{}).ParseResponse(body, model); err == nil {
		return resp, nil
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return nil, errEmptyResponse
	}
	if len(text) > maxFallbackBody {
		text = text[:maxFallbackBody] + "..."
	}
	return &llm.Response{Content: text, Model: model}, nil
}

var errEmptyResponse = errors.New("empty response body")
