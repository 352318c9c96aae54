// Package config provides unified configuration for the council server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (COUNCIL_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import (
	"fmt"
	"time"

	"github.com/councilofminds/council/pkg/debate"
)

// Config holds all configuration for the council server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Pipeline      PipelineConfig      `yaml:"pipeline"`
	Providers     ProvidersConfig     `yaml:"providers"`
	Profiles      []ProfileConfig     `yaml:"profiles"`
	Auth          AuthConfig          `yaml:"auth"`
	Observability ObservabilityConfig `yaml:"observability"`
	Debug         DebugConfig         `yaml:"debug"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 3000
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 600s
	MaxBodySize  int64         `yaml:"max_body_size"` // default: 1 MB
}

// PipelineConfig holds debate pipeline settings.
type PipelineConfig struct {
	// Profile is the default debate profile used when a request does not
	// name one. default: "council"
	Profile string `yaml:"profile"`

	CallTimeout   time.Duration `yaml:"call_timeout"`    // per provider call, default: 120s
	MaxAttempts   int           `yaml:"max_attempts"`    // default: 3
	BackoffBase   float64       `yaml:"backoff_base"`    // default: 2
	MaxSessions   int           `yaml:"max_sessions"`    // 0 = unlimited
	MaxQueryBytes int           `yaml:"max_query_bytes"` // default: 8192
}

// ProvidersConfig holds credentials and endpoints for all supported
// backends. A backend is considered configured when it has an API key.
type ProvidersConfig struct {
	OpenAI      ProviderConfig `yaml:"openai"`
	Anthropic   ProviderConfig `yaml:"anthropic"`
	Gemini      ProviderConfig `yaml:"gemini"`
	Grok        ProviderConfig `yaml:"grok"`
	HuggingFace ProviderConfig `yaml:"huggingface"`
}

// ProviderConfig holds the settings for one upstream backend.
type ProviderConfig struct {
	APIKey     string `yaml:"api_key"`
	APIKeyFile string `yaml:"api_key_file"` // _file variant for api_key
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"`
}

// Configured reports whether the backend has credentials.
func (p ProviderConfig) Configured() bool {
	return p.APIKey != ""
}

// ProfileConfig describes a custom debate profile declared in YAML.
type ProfileConfig struct {
	Name   string        `yaml:"name"`
	Stages []StageConfig `yaml:"stages"`
}

// StageConfig describes one stage of a YAML-declared profile.
type StageConfig struct {
	Role         string `yaml:"role"`
	Backend      string `yaml:"backend"`
	Identity     string `yaml:"identity"`
	Visible      bool   `yaml:"visible"`
	DelayAfterMS int    `yaml:"delay_after_ms"`
}

// ToProfile converts a YAML profile declaration into a debate.Profile.
// The FINAL stage's visible flag is accepted but ignored: the final
// answer never appears in the transcript regardless.
func (p ProfileConfig) ToProfile() (*debate.Profile, error) {
	profile := &debate.Profile{Name: p.Name}
	for i, s := range p.Stages {
		role, err := debate.ParseRole(s.Role)
		if err != nil {
			return nil, fmt.Errorf("profile %s stage %d: %w", p.Name, i, err)
		}
		profile.Stages = append(profile.Stages, debate.StageSpec{
			Role:       role,
			Backend:    s.Backend,
			Identity:   s.Identity,
			Visible:    s.Visible,
			DelayAfter: time.Duration(s.DelayAfterMS) * time.Millisecond,
		})
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	Type    string         `yaml:"type"`     // "none", "apikey", "jwt", default: "none"
	APIKeys []APIKeyConfig `yaml:"api_keys"` // API key entries for type=apikey
	JWT     JWTConfig      `yaml:"jwt"`      // settings for type=jwt
}

// APIKeyConfig describes a single API key entry.
type APIKeyConfig struct {
	Key     string `yaml:"key"`
	KeyFile string `yaml:"key_file"` // _file variant for key
	Subject string `yaml:"subject"`
}

// JWTConfig holds JWT verification settings.
type JWTConfig struct {
	Secret     string `yaml:"secret"`
	SecretFile string `yaml:"secret_file"` // _file variant for secret
	Issuer     string `yaml:"issuer"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// DebugConfig holds category debug logging settings.
type DebugConfig struct {
	Categories string `yaml:"categories"` // comma-separated, or "all"
	Level      string `yaml:"level"`      // debug, info, warn, error
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         3000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 600 * time.Second,
			MaxBodySize:  1 << 20,
		},
		Pipeline: PipelineConfig{
			Profile:       "council",
			CallTimeout:   120 * time.Second,
			MaxAttempts:   3,
			BackoffBase:   2,
			MaxQueryBytes: 8192,
		},
		Providers: ProvidersConfig{
			OpenAI:      ProviderConfig{Model: "gpt-4o", BaseURL: "https://api.openai.com"},
			Anthropic:   ProviderConfig{Model: "claude-sonnet-4-20250514", BaseURL: "https://api.anthropic.com"},
			Gemini:      ProviderConfig{Model: "gemini-2.0-flash", BaseURL: "https://generativelanguage.googleapis.com"},
			Grok:        ProviderConfig{Model: "grok-2-latest", BaseURL: "https://api.x.ai"},
			HuggingFace: ProviderConfig{Model: "mistralai/Mistral-7B-Instruct-v0.3", BaseURL: "https://api-inference.huggingface.co"},
		},
		Auth: AuthConfig{
			Type: "none",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}

// Backend returns the provider config for a backend id used in profiles.
func (p ProvidersConfig) Backend(id string) (ProviderConfig, bool) {
	switch id {
	case "openai":
		return p.OpenAI, true
	case "anthropic":
		return p.Anthropic, true
	case "gemini":
		return p.Gemini, true
	case "grok":
		return p.Grok, true
	case "huggingface":
		return p.HuggingFace, true
	default:
		return ProviderConfig{}, false
	}
}
