package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/councilofminds/council/pkg/api"
	"github.com/councilofminds/council/pkg/debug"
	"github.com/councilofminds/council/pkg/provider"
)

// Config holds the Gemini backend settings.
type Config struct {
	// APIKey is required and sent as the "key" query parameter.
	APIKey string

	// Model is the model name, e.g. "gemini-pro".
	Model string

	// BaseURL overrides the API root. Defaults to the public endpoint.
	BaseURL string

	// Timeout bounds a single HTTP round trip. Defaults to 120s.
	Timeout time.Duration

	// MaxTokens and Temperature are the fixed sampling parameters.
	MaxTokens   int
	Temperature float64
}

// Client implements provider.Provider over the generateContent API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

var _ provider.Provider = (*Client)(nil)

// New creates a Client. APIKey and Model are required.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: APIKey is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("gemini: Model is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
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
func (c *Client) Name() string { return "gemini" }

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Invoke performs one completion against generateContent.
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

	req := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: userMessage}}},
		},
		GenerationConfig: generationConfig{
			MaxOutputTokens: maxTokens,
			Temperature:     temperature,
		},
	}
	if systemPrompt != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: systemPrompt}}}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", api.NewProviderError("gemini",
			fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.cfg.BaseURL, c.cfg.Model, url.QueryEscape(c.cfg.APIKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", api.NewProviderError("gemini",
			fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	debug.Log("providers", "request", "provider", "gemini", "model", c.cfg.Model)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", api.NewTransientError("gemini",
			fmt.Sprintf("backend connection error: %s", err.Error()))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return "", c.mapHTTPError(httpResp)
	}

	var resp generateResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return "", api.NewMalformedResponseError("gemini",
			fmt.Sprintf("failed to parse backend response: %s", err.Error()))
	}

	if len(resp.Candidates) == 0 {
		return "", api.NewMalformedResponseError("gemini", "backend returned no candidates")
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", api.NewMalformedResponseError("gemini", "empty response")
	}

	return text, nil
}

func (c *Client) mapHTTPError(resp *http.Response) *api.PipelineError {
	message := extractErrorMessage(resp.Body)

	switch {
	// Gemini reports bad API keys as 400 INVALID_ARGUMENT, so both 400
	// and 401/403 can mean credentials.
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if message == "" {
			message = "backend rejected credentials"
		}
		return api.NewAuthError("gemini", message)

	case resp.StatusCode == http.StatusTooManyRequests:
		if message == "" {
			message = "backend rate limit exceeded"
		}
		return api.NewRateLimitedError("gemini", message)

	case resp.StatusCode >= http.StatusInternalServerError:
		if message == "" {
			message = fmt.Sprintf("backend server error (HTTP %d)", resp.StatusCode)
		}
		return api.NewTransientError("gemini", message)

	default:
		if message == "" {
			message = fmt.Sprintf("unexpected backend error (HTTP %d)", resp.StatusCode)
		}
		return api.NewProviderError("gemini", message)
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
