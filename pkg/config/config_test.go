package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/councilofminds/council/pkg/debate"
)

// minimalValid returns a config that passes validation: the default
// council profile with keys for all four backends.
func minimalValid() Config {
	cfg := Defaults()
	cfg.Providers.OpenAI.APIKey = "sk-test"
	cfg.Providers.Anthropic.APIKey = "ak-test"
	cfg.Providers.Gemini.APIKey = "gk-test"
	cfg.Providers.Grok.APIKey = "xk-test"
	return cfg
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "council", cfg.Pipeline.Profile)
	assert.Equal(t, 120*time.Second, cfg.Pipeline.CallTimeout)
	assert.Equal(t, 3, cfg.Pipeline.MaxAttempts)
	assert.Equal(t, float64(2), cfg.Pipeline.BackoffBase)
	assert.Equal(t, 8192, cfg.Pipeline.MaxQueryBytes)
	assert.Equal(t, "none", cfg.Auth.Type)
	assert.True(t, cfg.Observability.Metrics.Enabled)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9000
pipeline:
  call_timeout: 45s
  max_sessions: 16
providers:
  openai:
    api_key: sk-yaml
  anthropic:
    api_key: ak-yaml
  gemini:
    api_key: gk-yaml
  grok:
    api_key: xk-yaml
    model: grok-custom
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Pipeline.CallTimeout)
	assert.Equal(t, 16, cfg.Pipeline.MaxSessions)
	assert.Equal(t, "grok-custom", cfg.Providers.Grok.Model)

	// Untouched fields keep defaults.
	assert.Equal(t, 3, cfg.Pipeline.MaxAttempts)
	assert.Equal(t, "https://api.anthropic.com", cfg.Providers.Anthropic.BaseURL)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
providers:
  openai: {api_key: sk-yaml}
  anthropic: {api_key: ak-yaml}
  gemini: {api_key: gk-yaml}
  grok: {api_key: xk-yaml}
`)

	t.Setenv("COUNCIL_PORT", "4444")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("COUNCIL_GEMINI_MODEL", "gemini-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4444, cfg.Server.Port, "env overrides YAML")
	assert.Equal(t, "sk-env", cfg.Providers.OpenAI.APIKey)
	assert.Equal(t, "gemini-env", cfg.Providers.Gemini.Model)
}

func TestLoadFileReferences(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "openai.key")
	require.NoError(t, os.WriteFile(keyPath, []byte("  sk-from-file\n"), 0o600))

	path := writeConfigFile(t, `
providers:
  openai: {api_key_file: `+keyPath+`}
  anthropic: {api_key: ak}
  gemini: {api_key: gk}
  grok: {api_key: xk}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-file", cfg.Providers.OpenAI.APIKey, "file content is trimmed")
}

func TestLoadMissingConfigFileUsesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk")
	t.Setenv("ANTHROPIC_API_KEY", "ak")
	t.Setenv("GEMINI_API_KEY", "gk")
	t.Setenv("GROK_API_KEY", "xk")

	// No config file anywhere; env alone is enough.
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"negative call timeout", func(c *Config) { c.Pipeline.CallTimeout = -time.Second }, "call_timeout"},
		{"zero attempts", func(c *Config) { c.Pipeline.MaxAttempts = 0 }, "max_attempts"},
		{"backoff base one", func(c *Config) { c.Pipeline.BackoffBase = 1 }, "backoff_base"},
		{"unknown auth type", func(c *Config) { c.Auth.Type = "oauth" }, "auth.type"},
		{"apikey without keys", func(c *Config) { c.Auth.Type = "apikey" }, "auth.api_keys"},
		{"jwt without secret", func(c *Config) { c.Auth.Type = "jwt" }, "auth.jwt.secret"},
		{"unknown default profile", func(c *Config) { c.Pipeline.Profile = "nope" }, "unknown profile"},
		{"missing credential for active profile", func(c *Config) { c.Providers.Gemini.APIKey = "" }, "providers.gemini"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := minimalValid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadCustomProfiles(t *testing.T) {
	path := writeConfigFile(t, `
pipeline:
  profile: duo
providers:
  openai: {api_key: sk}
  anthropic: {api_key: ak}
profiles:
  - name: duo
    stages:
      - {role: initiator, backend: openai, identity: SCHOLAR, visible: true}
      - {role: critic, backend: anthropic, identity: SKEPTIC, visible: true, delay_after_ms: 500}
      - {role: final, backend: openai, identity: SCHOLAR}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Profiles, 1)

	profile, err := cfg.Profiles[0].ToProfile()
	require.NoError(t, err)
	assert.Equal(t, "duo", profile.Name)
	require.Len(t, profile.Stages, 3)
	assert.Equal(t, debate.RoleInitiator, profile.Stages[0].Role)
	assert.Equal(t, 500*time.Millisecond, profile.Stages[1].DelayAfter)
	assert.False(t, profile.Stages[2].Visible)
}

func TestValidateCustomProfileErrors(t *testing.T) {
	cfg := minimalValid()
	cfg.Profiles = []ProfileConfig{{
		Name: "broken",
		Stages: []StageConfig{
			{Role: "initiator", Backend: "nonexistent", Identity: "X", Visible: true},
			{Role: "final", Backend: "openai", Identity: "X"},
		},
	}}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestToProfileRejectsBadRole(t *testing.T) {
	pc := ProfileConfig{
		Name: "bad",
		Stages: []StageConfig{
			{Role: "arbiter", Backend: "openai", Identity: "X", Visible: true},
		},
	}
	_, err := pc.ToProfile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown debate role")
}
