package transport

import (
	"context"

	"github.com/councilofminds/council/pkg/api"
	"github.com/councilofminds/council/pkg/observability"
)

// SessionLimit returns middleware that caps the number of debate
// sessions running at once. A session arriving while the cap is reached
// is rejected immediately with a rate-limited error rather than queued:
// each session fans out to several slow upstream calls, so queueing
// would only convert overload into timeouts.
//
// max <= 0 disables the limit.
func SessionLimit(max int) Middleware {
	if max <= 0 {
		return func(next DebateRunner) DebateRunner { return next }
	}

	slots := make(chan struct{}, max)
	return func(next DebateRunner) DebateRunner {
		return RunnerFunc(func(ctx context.Context, query, profile string) (*api.PipelineResult, error) {
			select {
			case slots <- struct{}{}:
			default:
				return nil, api.NewRateLimitedError("", "too many concurrent debate sessions")
			}
			observability.InflightSessions.Inc()
			defer func() {
				<-slots
				observability.InflightSessions.Dec()
			}()

			return next.Run(ctx, query, profile)
		})
	}
}
