package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/councilofminds/council/pkg/api"
	"github.com/councilofminds/council/pkg/debug"
	"github.com/councilofminds/council/pkg/provider"
)

// apiVersion is the Messages API version header value.
const apiVersion = "2023-06-01"

// Config holds the Anthropic backend settings.
type Config struct {
	// APIKey is required and sent in the x-api-key header.
	APIKey string

	// Model is the model name, e.g. "claude-3-5-sonnet-20241022".
	Model string

	// BaseURL overrides the API root. Defaults to the public endpoint.
	BaseURL string

	// Timeout bounds a single HTTP round trip. Defaults to 120s.
	Timeout time.Duration

	// MaxTokens and Temperature are the fixed sampling parameters.
	MaxTokens   int
	Temperature float64
}

// Client implements provider.Provider over the Messages API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

var _ provider.Provider = (*Client)(nil)

// New creates a Client. APIKey and Model are required.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: APIKey is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("anthropic: Model is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
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

// Name returns the provider identifier.
func (c *Client) Name() string { return "anthropic" }

// messagesRequest is the Messages API request body. The system prompt is
// the top-level "system" field, not a message.
type messagesRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Messages    []userMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type userMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the success body. Text lives in content blocks of
// type "text".
type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Invoke performs one completion against the Messages API.
func (c *Client) Invoke(ctx context.Context, systemPrompt, userMsg string, opts *provider.Options) (string, error) {
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

	req := messagesRequest{
		Model:       c.cfg.Model,
		MaxTokens:   maxTokens,
		System:      systemPrompt,
		Messages:    []userMessage{{Role: "user", Content: userMsg}},
		Temperature: temperature,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", api.NewProviderError("anthropic",
			fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	url := c.cfg.BaseURL + "/v1/messages"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", api.NewProviderError("anthropic",
			fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	debug.Log("providers", "request", "provider", "anthropic", "url", url, "model", c.cfg.Model)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", api.NewTransientError("anthropic",
			fmt.Sprintf("backend connection error: %s", err.Error()))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return "", c.mapHTTPError(httpResp)
	}

	var resp messagesResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return "", api.NewMalformedResponseError("anthropic",
			fmt.Sprintf("failed to parse backend response: %s", err.Error()))
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", api.NewMalformedResponseError("anthropic", "empty response")
	}

	return text, nil
}

func (c *Client) mapHTTPError(resp *http.Response) *api.PipelineError {
	message := extractErrorMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if message == "" {
			message = "backend rejected credentials"
		}
		return api.NewAuthError("anthropic", message)

	case resp.StatusCode == http.StatusTooManyRequests:
		if message == "" {
			message = "backend rate limit exceeded"
		}
		return api.NewRateLimitedError("anthropic", message)

	case resp.StatusCode >= http.StatusInternalServerError:
		if message == "" {
			message = fmt.Sprintf("backend server error (HTTP %d)", resp.StatusCode)
		}
		return api.NewTransientError("anthropic", message)

	default:
		if message == "" {
			message = fmt.Sprintf("unexpected backend error (HTTP %d)", resp.StatusCode)
		}
		return api.NewProviderError("anthropic", message)
	}
}

func extractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var errResp errorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return ""
}

// Close releases client resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
