package debate

import (
	"context"
	"fmt"
	"time"

	"github.com/councilofminds/council/pkg/api"
	"github.com/councilofminds/council/pkg/debug"
	"github.com/councilofminds/council/pkg/observability"
	"github.com/councilofminds/council/pkg/provider"
)

// ProviderSource resolves a backend identifier to a provider. Satisfied
// by *provider.Registry and by test fakes.
type ProviderSource interface {
	Get(id string) provider.Provider
}

// Config holds per-orchestrator settings.
type Config struct {
	// CallTimeout bounds each stage's provider call, including the
	// adapter's retries and backoff waits. Defaults to 120s.
	CallTimeout time.Duration

	// MaxQueryBytes bounds accepted query length. Zero means the
	// api.DefaultMaxQueryBytes default.
	MaxQueryBytes int
}

// Orchestrator drives one debate profile to completion for one query at
// a time. It owns no mutable state across sessions: each Run creates its
// own transcript, so concurrent sessions are fully independent.
type Orchestrator struct {
	profile   *Profile
	providers ProviderSource
	cfg       Config
}

// New creates an Orchestrator. The profile must validate and every
// backend it names must resolve in the provider source.
func New(profile *Profile, providers ProviderSource, cfg Config) (*Orchestrator, error) {
	if providers == nil {
		return nil, fmt.Errorf("orchestrator: provider source must not be nil")
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	for _, backend := range profile.Backends() {
		if providers.Get(backend) == nil {
			return nil, fmt.Errorf("orchestrator: profile %s references unknown backend %q",
				profile.Name, backend)
		}
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 120 * time.Second
	}
	return &Orchestrator{profile: profile, providers: providers, cfg: cfg}, nil
}

// Profile returns the profile this orchestrator runs.
func (o *Orchestrator) Profile() *Profile { return o.profile }

// Run executes the full debate for the query and returns the assembled
// PipelineResult. On any stage failure the session aborts with no
// partial result; the returned error carries the stage role and backend
// identity. Cancelling ctx aborts the in-flight call, any backoff wait,
// and any inter-stage delay, and prevents further stages from starting.
func (o *Orchestrator) Run(ctx context.Context, query string) (*api.PipelineResult, error) {
	if err := api.ValidateQuery(query, o.cfg.MaxQueryBytes); err != nil {
		return nil, err
	}

	sessionID := api.NewSessionID()
	start := time.Now()
	tr := NewTranscript(query)

	debug.Log("debate", "session started",
		"session", sessionID, "profile", o.profile.Name, "stages", len(o.profile.Stages))

	for i, stage := range o.profile.Stages {
		if err := ctx.Err(); err != nil {
			return nil, o.fail(start, api.NewTransientError(stage.Backend,
				fmt.Sprintf("session cancelled: %s", err.Error())).WithStage(string(stage.Role)))
		}

		systemPrompt, userMessage := stage.builder()(query, tr)

		stageStart := time.Now()
		content, err := o.invoke(ctx, stage, systemPrompt, userMessage)
		stageElapsed := time.Since(stageStart)
		observability.StageDuration.WithLabelValues(string(stage.Role), stage.Backend).
			Observe(stageElapsed.Seconds())

		if err != nil {
			return nil, o.fail(start, api.AsPipelineError(stage.Backend, err).
				WithStage(string(stage.Role)))
		}

		tr.append(Entry{
			Identity: stage.Identity,
			Role:     stage.Role,
			Content:  content,
			Visible:  stage.Visible,
			Elapsed:  time.Since(start),
		})

		debug.Log("debate", "stage completed",
			"session", sessionID,
			"stage", fmt.Sprintf("%d/%d", i+1, len(o.profile.Stages)),
			"role", string(stage.Role),
			"backend", stage.Backend,
			"elapsed", stageElapsed.String())

		// Optional pacing delay, skipped after the last stage.
		if stage.DelayAfter > 0 && i < len(o.profile.Stages)-1 {
			if err := sleepCtx(ctx, stage.DelayAfter); err != nil {
				return nil, o.fail(start, api.NewTransientError(stage.Backend,
					fmt.Sprintf("session cancelled during stage delay: %s", err.Error())).
					WithStage(string(stage.Role)))
			}
		}
	}

	total := time.Since(start)
	result := o.assemble(query, tr, total)

	observability.SessionsTotal.WithLabelValues(o.profile.Name, "completed").Inc()
	observability.SessionDuration.WithLabelValues(o.profile.Name).Observe(total.Seconds())
	debug.Log("debate", "session completed",
		"session", sessionID, "profile", o.profile.Name, "total", total.String())

	return result, nil
}

// invoke performs one stage call under the per-call timeout.
func (o *Orchestrator) invoke(ctx context.Context, stage StageSpec, systemPrompt, userMessage string) (string, error) {
	p := o.providers.Get(stage.Backend)
	if p == nil {
		return "", api.NewProviderError(stage.Backend, "backend not configured")
	}

	callCtx, cancel := context.WithTimeout(ctx, o.cfg.CallTimeout)
	defer cancel()

	return p.Invoke(callCtx, systemPrompt, userMessage, nil)
}

// assemble builds the terminal PipelineResult from the finished
// transcript: visible non-FINAL entries in execution order, the FINAL
// stage's content as the answer, and session timing metadata.
func (o *Orchestrator) assemble(query string, tr *Transcript, total time.Duration) *api.PipelineResult {
	visible := tr.Visible()
	responses := make([]api.StageResult, 0, len(visible))
	for _, e := range visible {
		responses = append(responses, api.StageResult{
			Agent:     e.Identity,
			Role:      string(e.Role),
			Content:   e.Content,
			Timestamp: e.Elapsed.Milliseconds(),
		})
	}

	return &api.PipelineResult{
		Query:       query,
		Responses:   responses,
		FinalAnswer: tr.ContentFor(RoleFinal),
		Metadata: api.Metadata{
			TotalTime:   total.Milliseconds(),
			CompletedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

func (o *Orchestrator) fail(start time.Time, err *api.PipelineError) *api.PipelineError {
	observability.SessionsTotal.WithLabelValues(o.profile.Name, "failed").Inc()
	observability.SessionDuration.WithLabelValues(o.profile.Name).Observe(time.Since(start).Seconds())
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
