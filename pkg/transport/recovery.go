package transport

import (
	"context"
	"fmt"

	"github.com/councilofminds/council/pkg/api"
)

// Recovery returns middleware that catches panics in the pipeline and
// converts them to provider errors. The server continues to accept new
// sessions after a panic is recovered.
func Recovery() Middleware {
	return func(next DebateRunner) DebateRunner {
		return RunnerFunc(func(ctx context.Context, query, profile string) (result *api.PipelineResult, retErr error) {
			defer func() {
				if r := recover(); r != nil {
					result = nil
					retErr = api.NewProviderError("", fmt.Sprintf("internal error: %v", r))
				}
			}()
			return next.Run(ctx, query, profile)
		})
	}
}
