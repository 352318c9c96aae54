package config

import (
	"errors"
	"fmt"
)

// councilBackends are the backends the built-in council profile uses.
var councilBackends = []string{"openai", "anthropic", "gemini", "grok"}

// Validate checks the configuration for required fields and valid
// values. Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.read_timeout must be > 0"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.write_timeout must be > 0"))
	}

	if c.Pipeline.Profile == "" {
		errs = append(errs, fmt.Errorf("pipeline.profile is required"))
	}
	if c.Pipeline.CallTimeout <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.call_timeout must be > 0"))
	}
	if c.Pipeline.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("pipeline.max_attempts must be >= 1, got %d", c.Pipeline.MaxAttempts))
	}
	if c.Pipeline.BackoffBase <= 1 {
		errs = append(errs, fmt.Errorf("pipeline.backoff_base must be > 1, got %g", c.Pipeline.BackoffBase))
	}
	if c.Pipeline.MaxQueryBytes <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.max_query_bytes must be > 0, got %d", c.Pipeline.MaxQueryBytes))
	}
	if c.Pipeline.MaxSessions < 0 {
		errs = append(errs, fmt.Errorf("pipeline.max_sessions must be >= 0, got %d", c.Pipeline.MaxSessions))
	}

	// Custom profiles must be structurally valid and reference known
	// backends.
	customNames := map[string]bool{}
	for _, pc := range c.Profiles {
		if customNames[pc.Name] {
			errs = append(errs, fmt.Errorf("profiles: duplicate profile name %q", pc.Name))
			continue
		}
		customNames[pc.Name] = true

		if _, err := pc.ToProfile(); err != nil {
			errs = append(errs, err)
			continue
		}
		for i, s := range pc.Stages {
			if _, ok := c.Providers.Backend(s.Backend); !ok {
				errs = append(errs, fmt.Errorf("profiles.%s.stages[%d]: unknown backend %q", pc.Name, i, s.Backend))
			}
		}
	}

	// The default profile must exist and its backends must hold
	// credentials: a misconfigured key should fail at startup, not at
	// the first query.
	if c.Pipeline.Profile != "" {
		errs = append(errs, c.validateActiveProfile(customNames)...)
	}

	switch c.Auth.Type {
	case "none", "apikey", "jwt", "":
		// valid
	default:
		errs = append(errs, fmt.Errorf("auth.type must be \"none\", \"apikey\", or \"jwt\", got %q", c.Auth.Type))
	}
	if c.Auth.Type == "apikey" && len(c.Auth.APIKeys) == 0 {
		errs = append(errs, fmt.Errorf("auth.api_keys is required when auth.type is \"apikey\""))
	}
	if c.Auth.Type == "jwt" && c.Auth.JWT.Secret == "" && c.Auth.JWT.SecretFile == "" {
		errs = append(errs, fmt.Errorf("auth.jwt.secret or auth.jwt.secret_file is required when auth.type is \"jwt\""))
	}

	return errors.Join(errs...)
}

func (c *Config) validateActiveProfile(customNames map[string]bool) []error {
	var errs []error

	var backends []string
	switch {
	case c.Pipeline.Profile == "council":
		backends = councilBackends
	case customNames[c.Pipeline.Profile]:
		for _, pc := range c.Profiles {
			if pc.Name != c.Pipeline.Profile {
				continue
			}
			seen := map[string]bool{}
			for _, s := range pc.Stages {
				if !seen[s.Backend] {
					seen[s.Backend] = true
					backends = append(backends, s.Backend)
				}
			}
		}
	default:
		return []error{fmt.Errorf("pipeline.profile: unknown profile %q", c.Pipeline.Profile)}
	}

	for _, b := range backends {
		pc, ok := c.Providers.Backend(b)
		if !ok {
			errs = append(errs, fmt.Errorf("pipeline.profile %q: unknown backend %q", c.Pipeline.Profile, b))
			continue
		}
		if !pc.Configured() {
			errs = append(errs, fmt.Errorf("providers.%s.api_key is required by profile %q", b, c.Pipeline.Profile))
		}
	}

	return errs
}
