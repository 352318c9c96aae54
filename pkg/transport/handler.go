package transport

import (
	"context"

	"github.com/councilofminds/council/pkg/api"
)

// DebateRunner handles the core run-debate operation. It is the single
// contract the HTTP adapter and all middleware are written against: a
// query and an optional profile name go in, a complete pipeline result
// or an attributable error comes out. Implementations never return a
// partial result alongside an error.
type DebateRunner interface {
	Run(ctx context.Context, query, profile string) (*api.PipelineResult, error)
}

// RunnerFunc is an adapter that allows using an ordinary function as a
// DebateRunner.
type RunnerFunc func(ctx context.Context, query, profile string) (*api.PipelineResult, error)

// Run calls f(ctx, query, profile).
func (f RunnerFunc) Run(ctx context.Context, query, profile string) (*api.PipelineResult, error) {
	return f(ctx, query, profile)
}
