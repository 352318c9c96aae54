package transport

import (
	"context"
	"sync"
	"testing"

	"github.com/councilofminds/council/pkg/api"
)

// blockingRunner holds sessions open until released so the limit can be
// observed deterministically.
type blockingRunner struct {
	started chan struct{}
	release chan struct{}
}

func (r *blockingRunner) Run(ctx context.Context, query, profile string) (*api.PipelineResult, error) {
	r.started <- struct{}{}
	<-r.release
	return &api.PipelineResult{}, nil
}

func TestSessionLimitRejectsOverflow(t *testing.T) {
	runner := &blockingRunner{
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	wrapped := SessionLimit(2)(runner)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wrapped.Run(context.Background(), "q", "")
		}()
	}

	// Wait for both sessions to occupy their slots.
	<-runner.started
	<-runner.started

	_, err := wrapped.Run(context.Background(), "q", "")
	if err == nil {
		t.Fatal("Run() error = nil, want rate-limited rejection")
	}
	perr := api.AsPipelineError("", err)
	if perr.Kind != api.ErrorKindRateLimited {
		t.Errorf("Kind = %q, want %q", perr.Kind, api.ErrorKindRateLimited)
	}

	close(runner.release)
	wg.Wait()

	// Slots freed: a new session is admitted.
	if _, err := wrapped.Run(context.Background(), "q", ""); err != nil {
		t.Errorf("Run() after release error = %v", err)
	}
}

func TestSessionLimitDisabled(t *testing.T) {
	wrapped := SessionLimit(0)(okRunner(nil))
	for i := 0; i < 5; i++ {
		if _, err := wrapped.Run(context.Background(), "q", ""); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	}
}
