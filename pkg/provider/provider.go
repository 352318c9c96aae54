package provider

import "context"

// Provider abstracts one external LLM backend. Invoke performs a single
// completion: it sends the system prompt and user message and returns the
// backend's text response, normalized to a plain string.
//
// Invoke fails only with *api.PipelineError values so callers can
// classify failures without inspecting transport details.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai", "anthropic").
	Name() string

	// Invoke performs one completion. opts may be nil, in which case the
	// adapter's configured defaults apply.
	Invoke(ctx context.Context, systemPrompt, userMessage string, opts *Options) (string, error)

	// Close releases provider resources (HTTP clients, connections).
	Close() error
}

// Options carries per-call sampling parameters. These are fixed per
// backend by configuration; the front door does not expose them.
type Options struct {
	// MaxTokens bounds the length of the generated response.
	MaxTokens int

	// Temperature is the sampling temperature.
	Temperature float64
}

// DefaultOptions returns the sampling parameters used when a backend's
// configuration does not override them. The values match the fixed
// parameters every council backend runs with.
func DefaultOptions() *Options {
	return &Options{
		MaxTokens:   1500,
		Temperature: 0.7,
	}
}

// Registry maps provider identifiers to constructed providers. It is
// populated once at startup and read-only afterwards, so no locking is
// needed for concurrent sessions.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider under its Name(). Registering the same name
// twice replaces the earlier entry.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get returns the provider registered under id, or nil if unknown.
func (r *Registry) Get(id string) Provider {
	return r.providers[id]
}

// Names returns the identifiers of all registered providers.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// Close closes all registered providers, returning the first error.
func (r *Registry) Close() error {
	var firstErr error
	for _, p := range r.providers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
