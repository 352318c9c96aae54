package provider

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/councilofminds/council/pkg/api"
	"github.com/councilofminds/council/pkg/debug"
	"github.com/councilofminds/council/pkg/observability"
)

// RetryPolicy controls the backoff schedule applied by Retrying.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BackoffBase is the exponential base in seconds: the wait before
	// attempt k+1 is BackoffBase^k seconds (2s, 4s, 8s for base 2).
	BackoffBase float64

	// sleep is overridable in tests. nil means a context-aware wait.
	sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns the standard policy: 3 attempts, base 2.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BackoffBase: 2}
}

// Retrying wraps a Provider with bounded exponential-backoff retries.
// Only errors whose kind is retryable (rate_limited, transient_transport)
// are retried; everything else propagates immediately. When the retry
// budget is exhausted, the final error names the backend and carries the
// attempt count.
type Retrying struct {
	inner  Provider
	policy RetryPolicy
}

// WithRetry wraps p with the given policy. Zero-valued policy fields fall
// back to DefaultRetryPolicy.
func WithRetry(p Provider, policy RetryPolicy) *Retrying {
	def := DefaultRetryPolicy()
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = def.MaxAttempts
	}
	if policy.BackoffBase <= 0 {
		policy.BackoffBase = def.BackoffBase
	}
	return &Retrying{inner: p, policy: policy}
}

// Name returns the wrapped provider's identifier.
func (r *Retrying) Name() string { return r.inner.Name() }

// Close closes the wrapped provider.
func (r *Retrying) Close() error { return r.inner.Close() }

// Invoke performs the completion, retrying retryable failures with
// exponential backoff. The context bounds the whole call including
// backoff waits, so a per-call timeout set by the orchestrator covers
// every attempt.
func (r *Retrying) Invoke(ctx context.Context, systemPrompt, userMessage string, opts *Options) (string, error) {
	var lastErr *api.PipelineError

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait := r.backoff(attempt - 1)
			debug.Log("providers", "retrying after backoff",
				"provider", r.inner.Name(),
				"attempt", attempt,
				"wait", wait.String())
			observability.ProviderRetriesTotal.WithLabelValues(r.inner.Name()).Inc()

			if err := r.wait(ctx, wait); err != nil {
				return "", api.NewTransientError(r.inner.Name(),
					fmt.Sprintf("cancelled while waiting to retry: %s", err.Error()))
			}
		}

		text, err := r.inner.Invoke(ctx, systemPrompt, userMessage, opts)
		if err == nil {
			observability.ProviderRequestsTotal.WithLabelValues(r.inner.Name(), "ok").Inc()
			return text, nil
		}
		observability.ProviderRequestsTotal.WithLabelValues(r.inner.Name(), "error").Inc()

		lastErr = api.AsPipelineError(r.inner.Name(), err)
		debug.Log("providers", "attempt failed",
			"provider", r.inner.Name(),
			"attempt", attempt,
			"kind", string(lastErr.Kind),
			"error", lastErr.Message)

		if !lastErr.Retryable() {
			return "", lastErr
		}
	}

	exhausted := *lastErr
	exhausted.Attempts = r.policy.MaxAttempts
	exhausted.Message = fmt.Sprintf("%s backend failed: %s",
		r.inner.Name(), lastErr.Message)
	return "", &exhausted
}

// backoff returns the wait before attempt k+1 (k is 1-based here).
func (r *Retrying) backoff(k int) time.Duration {
	secs := math.Pow(r.policy.BackoffBase, float64(k))
	return time.Duration(secs * float64(time.Second))
}

func (r *Retrying) wait(ctx context.Context, d time.Duration) error {
	if r.policy.sleep != nil {
		return r.policy.sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
