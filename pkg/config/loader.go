package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, COUNCIL_CONFIG env, ./config.yaml, /etc/council/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. COUNCIL_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/council/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("COUNCIL_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/council/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields. The
// per-provider key variables match the names the original deployment
// used (OPENAI_API_KEY and friends) so existing .env files keep working;
// everything else uses the COUNCIL_ prefix.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COUNCIL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("COUNCIL_PROFILE"); v != "" {
		cfg.Pipeline.Profile = v
	}
	if v := os.Getenv("COUNCIL_CALL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Pipeline.CallTimeout = d
		}
	}
	if v := os.Getenv("COUNCIL_MAX_SESSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.MaxSessions = n
		}
	}
	if v := os.Getenv("COUNCIL_AUTH_TYPE"); v != "" {
		cfg.Auth.Type = v
	}

	envKeys := []struct {
		env string
		dst *ProviderConfig
	}{
		{"OPENAI_API_KEY", &cfg.Providers.OpenAI},
		{"ANTHROPIC_API_KEY", &cfg.Providers.Anthropic},
		{"GEMINI_API_KEY", &cfg.Providers.Gemini},
		{"GROK_API_KEY", &cfg.Providers.Grok},
		{"HUGGINGFACE_API_KEY", &cfg.Providers.HuggingFace},
	}
	for _, e := range envKeys {
		if v := os.Getenv(e.env); v != "" {
			e.dst.APIKey = v
		}
	}

	envModels := []struct {
		env string
		dst *ProviderConfig
	}{
		{"COUNCIL_OPENAI_MODEL", &cfg.Providers.OpenAI},
		{"COUNCIL_ANTHROPIC_MODEL", &cfg.Providers.Anthropic},
		{"COUNCIL_GEMINI_MODEL", &cfg.Providers.Gemini},
		{"COUNCIL_GROK_MODEL", &cfg.Providers.Grok},
		{"COUNCIL_HUGGINGFACE_MODEL", &cfg.Providers.HuggingFace},
	}
	for _, e := range envModels {
		if v := os.Getenv(e.env); v != "" {
			e.dst.Model = v
		}
	}
}

// resolveFileReferences reads _file fields and populates the
// corresponding value fields. For each field ending in _file, if the
// value field is empty and the file field is set, the file is read,
// whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	providers := []struct {
		name string
		p    *ProviderConfig
	}{
		{"openai", &cfg.Providers.OpenAI},
		{"anthropic", &cfg.Providers.Anthropic},
		{"gemini", &cfg.Providers.Gemini},
		{"grok", &cfg.Providers.Grok},
		{"huggingface", &cfg.Providers.HuggingFace},
	}
	for _, e := range providers {
		if e.p.APIKeyFile != "" && e.p.APIKey == "" {
			val, err := readSecretFile(e.p.APIKeyFile)
			if err != nil {
				return fmt.Errorf("providers.%s.api_key_file: %w", e.name, err)
			}
			e.p.APIKey = val
		}
	}

	for i := range cfg.Auth.APIKeys {
		if cfg.Auth.APIKeys[i].KeyFile != "" && cfg.Auth.APIKeys[i].Key == "" {
			val, err := readSecretFile(cfg.Auth.APIKeys[i].KeyFile)
			if err != nil {
				return fmt.Errorf("auth.api_keys[%d].key_file: %w", i, err)
			}
			cfg.Auth.APIKeys[i].Key = val
		}
	}

	if cfg.Auth.JWT.SecretFile != "" && cfg.Auth.JWT.Secret == "" {
		val, err := readSecretFile(cfg.Auth.JWT.SecretFile)
		if err != nil {
			return fmt.Errorf("auth.jwt.secret_file: %w", err)
		}
		cfg.Auth.JWT.Secret = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding
// whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
