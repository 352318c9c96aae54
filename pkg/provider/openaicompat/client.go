package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/councilofminds/council/pkg/api"
	"github.com/councilofminds/council/pkg/debug"
	"github.com/councilofminds/council/pkg/provider"
)

// Config holds the per-backend settings for a Chat Completions client.
type Config struct {
	// Name is the provider identifier used for error attribution and
	// metrics ("openai", "grok", ...).
	Name string

	// BaseURL is the API root, e.g. "https://api.openai.com" or
	// "https://api.x.ai".
	BaseURL string

	// APIKey is sent as a Bearer token.
	APIKey string

	// Model is the model name sent with every request.
	Model string

	// Timeout bounds a single HTTP round trip. Defaults to 120s.
	Timeout time.Duration

	// MaxTokens and Temperature are the fixed sampling parameters for
	// this backend. Zero values fall back to provider.DefaultOptions.
	MaxTokens   int
	Temperature float64
}

// Client implements provider.Provider over the Chat Completions protocol.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

var _ provider.Provider = (*Client)(nil)

// New creates a Client. BaseURL, Name, and Model are required.
func New(cfg Config) (*Client, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("openaicompat: Name is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("openaicompat: BaseURL is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openaicompat: Model is required")
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	def := provider.DefaultOptions()
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = def.Temperature
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Name returns the configured provider identifier.
func (c *Client) Name() string { return c.cfg.Name }

// Invoke performs one completion. The system prompt is sent as a leading
// "system" role message, the user message as a "user" role message.
func (c *Client) Invoke(ctx context.Context, systemPrompt, userMessage string, opts *provider.Options) (string, error) {
	maxTokens := c.cfg.MaxTokens
	temperature := c.cfg.Temperature
	if opts != nil {
		if opts.MaxTokens > 0 {
			maxTokens = opts.MaxTokens
		}
		if opts.Temperature > 0 {
			temperature = opts.Temperature
		}
	}

	chatReq := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return "", api.NewProviderError(c.cfg.Name,
			fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	url := c.cfg.BaseURL + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", api.NewProviderError(c.cfg.Name,
			fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	debug.Log("providers", "request", "provider", c.cfg.Name, "url", url, "model", c.cfg.Model)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", MapNetworkError(c.cfg.Name, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return "", MapHTTPError(c.cfg.Name, httpResp)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&chatResp); err != nil {
		return "", api.NewMalformedResponseError(c.cfg.Name,
			fmt.Sprintf("failed to parse backend response: %s", err.Error()))
	}

	if len(chatResp.Choices) == 0 {
		return "", api.NewMalformedResponseError(c.cfg.Name, "backend returned no choices")
	}

	text := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if text == "" {
		return "", api.NewMalformedResponseError(c.cfg.Name, "empty response")
	}

	return text, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
