// Command server runs the council debate API.
//
// Configuration is layered: config.yaml (or -config / COUNCIL_CONFIG),
// then environment overrides. The per-provider key variables follow the
// usual names:
//
//	OPENAI_API_KEY       - GPT backend key
//	ANTHROPIC_API_KEY    - Claude backend key
//	GEMINI_API_KEY       - Gemini backend key
//	GROK_API_KEY         - Grok backend key
//	HUGGINGFACE_API_KEY  - Hugging Face backend key (optional)
//	COUNCIL_PORT         - Listen port (default: 3000)
//	COUNCIL_PROFILE      - Default debate profile (default: "council")
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/councilofminds/council/pkg/auth"
	"github.com/councilofminds/council/pkg/auth/apikey"
	jwtauth "github.com/councilofminds/council/pkg/auth/jwt"
	"github.com/councilofminds/council/pkg/config"
	"github.com/councilofminds/council/pkg/debate"
	"github.com/councilofminds/council/pkg/debug"
	"github.com/councilofminds/council/pkg/provider"
	"github.com/councilofminds/council/pkg/provider/anthropic"
	"github.com/councilofminds/council/pkg/provider/gemini"
	"github.com/councilofminds/council/pkg/provider/huggingface"
	"github.com/councilofminds/council/pkg/provider/openaicompat"
	transporthttp "github.com/councilofminds/council/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	debug.Init(cfg.Debug.Categories, cfg.Debug.Level)

	registry, err := buildProviders(cfg)
	if err != nil {
		return err
	}
	defer registry.Close()

	service, err := buildService(cfg, registry)
	if err != nil {
		return err
	}

	opts := []transporthttp.ServerOption{
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithMaxSessions(cfg.Pipeline.MaxSessions),
	}
	if cfg.Observability.Metrics.Enabled {
		opts = append(opts,
			transporthttp.WithMetricsHandler(promhttp.Handler()),
			transporthttp.WithMetricsPath(cfg.Observability.Metrics.Path),
		)
	}
	if mw, err := authMiddleware(cfg); err != nil {
		return err
	} else if mw != nil {
		opts = append(opts, transporthttp.WithHTTPMiddleware(mw))
	}

	srv := transporthttp.NewServer(service, opts...)

	slog.Info("council starting",
		"port", cfg.Server.Port,
		"profile", cfg.Pipeline.Profile,
		"backends", registry.Names(),
	)
	return srv.ListenAndServe()
}

// buildProviders constructs a retry-wrapped provider for every backend
// with credentials.
func buildProviders(cfg *config.Config) (*provider.Registry, error) {
	policy := provider.RetryPolicy{
		MaxAttempts: cfg.Pipeline.MaxAttempts,
		BackoffBase: cfg.Pipeline.BackoffBase,
	}
	timeout := cfg.Pipeline.CallTimeout

	registry := provider.NewRegistry()
	register := func(p provider.Provider, err error) error {
		if err != nil {
			return err
		}
		registry.Register(provider.WithRetry(p, policy))
		return nil
	}

	if pc := cfg.Providers.OpenAI; pc.Configured() {
		if err := register(openaicompat.New(openaicompat.Config{
			Name:    "openai",
			BaseURL: pc.BaseURL,
			APIKey:  pc.APIKey,
			Model:   pc.Model,
			Timeout: timeout,
		})); err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
	}
	if pc := cfg.Providers.Grok; pc.Configured() {
		if err := register(openaicompat.New(openaicompat.Config{
			Name:    "grok",
			BaseURL: pc.BaseURL,
			APIKey:  pc.APIKey,
			Model:   pc.Model,
			Timeout: timeout,
		})); err != nil {
			return nil, fmt.Errorf("grok: %w", err)
		}
	}
	if pc := cfg.Providers.Anthropic; pc.Configured() {
		if err := register(anthropic.New(anthropic.Config{
			APIKey:  pc.APIKey,
			Model:   pc.Model,
			BaseURL: pc.BaseURL,
			Timeout: timeout,
		})); err != nil {
			return nil, fmt.Errorf("anthropic: %w", err)
		}
	}
	if pc := cfg.Providers.Gemini; pc.Configured() {
		if err := register(gemini.New(gemini.Config{
			APIKey:  pc.APIKey,
			Model:   pc.Model,
			BaseURL: pc.BaseURL,
			Timeout: timeout,
		})); err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
	}
	if pc := cfg.Providers.HuggingFace; pc.Configured() {
		if err := register(huggingface.New(huggingface.Config{
			APIKey:  pc.APIKey,
			Model:   pc.Model,
			BaseURL: pc.BaseURL,
			Timeout: timeout,
		})); err != nil {
			return nil, fmt.Errorf("huggingface: %w", err)
		}
	}

	return registry, nil
}

// buildService assembles one orchestrator per profile whose backends
// are all configured, plus any custom YAML profiles.
func buildService(cfg *config.Config, registry *provider.Registry) (*debate.Service, error) {
	orchCfg := debate.Config{
		CallTimeout:   cfg.Pipeline.CallTimeout,
		MaxQueryBytes: cfg.Pipeline.MaxQueryBytes,
	}

	profiles := []*debate.Profile{}
	if available(registry, debate.CouncilProfile()) {
		profiles = append(profiles, debate.CouncilProfile())
	}
	for _, pc := range cfg.Profiles {
		p, err := pc.ToProfile()
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	var orchs []*debate.Orchestrator
	for _, p := range profiles {
		o, err := debate.New(p, registry, orchCfg)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", p.Name, err)
		}
		orchs = append(orchs, o)
	}
	if len(orchs) == 0 {
		return nil, fmt.Errorf("no debate profile can run with the configured backends")
	}

	return debate.NewService(cfg.Pipeline.Profile, orchs...)
}

func available(registry *provider.Registry, p *debate.Profile) bool {
	for _, b := range p.Backends() {
		if registry.Get(b) == nil {
			return false
		}
	}
	return true
}

// authMiddleware builds the HTTP auth middleware for the configured
// auth type, or nil when auth is disabled.
func authMiddleware(cfg *config.Config) (func(http.Handler) http.Handler, error) {
	var chain *auth.AuthChain
	switch cfg.Auth.Type {
	case "", "none":
		return nil, nil
	case "apikey":
		entries := make([]apikey.RawKeyEntry, 0, len(cfg.Auth.APIKeys))
		for _, k := range cfg.Auth.APIKeys {
			entries = append(entries, apikey.RawKeyEntry{
				Key:      k.Key,
				Identity: auth.Identity{Subject: k.Subject},
			})
		}
		chain = &auth.AuthChain{
			Authenticators:  []auth.Authenticator{apikey.New(entries)},
			DefaultDecision: auth.No,
		}
	case "jwt":
		chain = &auth.AuthChain{
			Authenticators: []auth.Authenticator{jwtauth.New(jwtauth.Config{
				Secret: cfg.Auth.JWT.Secret,
				Issuer: cfg.Auth.JWT.Issuer,
			})},
			DefaultDecision: auth.No,
		}
	default:
		return nil, fmt.Errorf("unknown auth type %q", cfg.Auth.Type)
	}

	bypass := auth.DefaultBypassEndpoints
	if p := cfg.Observability.Metrics.Path; p != "" && p != "/metrics" {
		bypass = append(bypass, p)
	}
	return auth.Middleware(chain, bypass), nil
}
