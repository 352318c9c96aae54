package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/councilofminds/council/pkg/api"
)

// Logging returns middleware that emits structured log entries for each
// debate session. The entry includes the request ID (from context), the
// profile, the query length, duration, and whether the session succeeded
// or failed. Query content itself is never logged.
//
// For HTTP-level logging (status codes, methods) use the metrics and
// adapter middleware; this middleware logs at the session level.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next DebateRunner) DebateRunner {
		return RunnerFunc(func(ctx context.Context, query, profile string) (*api.PipelineResult, error) {
			start := time.Now()
			requestID := RequestIDFromContext(ctx)

			result, err := next.Run(ctx, query, profile)

			attrs := []slog.Attr{
				slog.String("request_id", requestID),
				slog.String("profile", profile),
				slog.Int("query_bytes", len(query)),
				slog.Duration("duration", time.Since(start)),
			}

			if err != nil {
				pe := api.AsPipelineError("", err)
				attrs = append(attrs,
					slog.String("error", pe.Message),
					slog.String("kind", string(pe.Kind)),
					slog.String("stage", pe.Stage),
				)
				logger.LogAttrs(ctx, slog.LevelError, "debate session failed", attrs...)
			} else {
				attrs = append(attrs, slog.Int("responses", len(result.Responses)))
				logger.LogAttrs(ctx, slog.LevelInfo, "debate session completed", attrs...)
			}

			return result, err
		})
	}
}
