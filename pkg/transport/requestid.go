package transport

import (
	"context"

	"github.com/google/uuid"

	"github.com/councilofminds/council/pkg/api"
)

// RequestID returns middleware that assigns a unique request ID to each
// session. If the incoming context already carries a request ID (set by
// the HTTP adapter from the X-Request-ID header), that value is kept.
// Otherwise a new UUID is generated.
//
// The request ID is stored in the context and can be retrieved with
// RequestIDFromContext.
func RequestID() Middleware {
	return func(next DebateRunner) DebateRunner {
		return RunnerFunc(func(ctx context.Context, query, profile string) (*api.PipelineResult, error) {
			if RequestIDFromContext(ctx) == "" {
				ctx = ContextWithRequestID(ctx, uuid.NewString())
			}
			return next.Run(ctx, query, profile)
		})
	}
}
