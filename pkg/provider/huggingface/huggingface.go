package huggingface

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

// Config holds the Hugging Face Inference backend settings.
type Config struct {
	// APIKey is required and sent as a Bearer token.
	APIKey string

	// Model is the repository path, e.g. "mistralai/Mistral-7B-Instruct-v0.2".
	Model string

	// BaseURL overrides the API root. Defaults to the public endpoint.
	BaseURL string

	// Timeout bounds a single HTTP round trip. Defaults to 120s.
	Timeout time.Duration

	// MaxTokens and Temperature are the fixed sampling parameters.
	MaxTokens   int
	Temperature float64
}

// Client implements provider.Provider over the Inference API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

var _ provider.Provider = (*Client)(nil)

// New creates a Client. APIKey and Model are required.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("huggingface: APIKey is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("huggingface: Model is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-inference.huggingface.co"
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
func (c *Client) Name() string { return "huggingface" }

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxNewTokens   int      `json:"max_new_tokens"`
	Temperature    float64  `json:"temperature"`
	TopP           float64  `json:"top_p"`
	ReturnFullText bool     `json:"return_full_text"`
	DoSample       bool     `json:"do_sample"`
	Stop           []string `json:"stop"`
}

// Invoke performs one completion. The Inference API has no separate
// system slot, so the separation is synthesized textually with the
// Mistral instruction format.
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

	prompt := fmt.Sprintf("<s>[INST] %s\n\n%s [/INST]", systemPrompt, userMessage)

	req := inferenceRequest{
		Inputs: prompt,
		Parameters: inferenceParameters{
			MaxNewTokens:   maxTokens,
			Temperature:    temperature,
			TopP:           0.95,
			ReturnFullText: false,
			DoSample:       true,
			Stop:           []string{"</s>", "[INST]"},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", api.NewProviderError("huggingface",
			fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	url := c.cfg.BaseURL + "/models/" + c.cfg.Model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", api.NewProviderError("huggingface",
			fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	debug.Log("providers", "request", "provider", "huggingface", "model", c.cfg.Model)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", api.NewTransientError("huggingface",
			fmt.Sprintf("backend connection error: %s", err.Error()))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return "", c.mapHTTPError(httpResp)
	}

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 4<<20))
	if err != nil {
		return "", api.NewTransientError("huggingface",
			fmt.Sprintf("failed to read backend response: %s", err.Error()))
	}

	text, perr := Normalize(raw)
	if perr != nil {
		return "", perr
	}
	return text, nil
}

func (c *Client) mapHTTPError(resp *http.Response) *api.PipelineError {
	message := extractErrorMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if message == "" {
			message = "invalid Hugging Face API key"
		}
		return api.NewAuthError("huggingface", message)

	case resp.StatusCode == http.StatusTooManyRequests:
		if message == "" {
			message = "rate limit exceeded, please try again later"
		}
		return api.NewRateLimitedError("huggingface", message)

	// 503 means the model is still loading on the inference cluster;
	// a later attempt can succeed, so it retries like any 5xx.
	case resp.StatusCode >= http.StatusInternalServerError:
		if message == "" {
			message = fmt.Sprintf("backend server error (HTTP %d)", resp.StatusCode)
		}
		return api.NewTransientError("huggingface", message)

	default:
		if message == "" {
			message = fmt.Sprintf("unexpected backend error (HTTP %d)", resp.StatusCode)
		}
		return api.NewProviderError("huggingface", message)
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
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	return ""
}

// Close releases client resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
