package transport

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/councilofminds/council/pkg/api"
)

func okRunner(order *[]string) DebateRunner {
	return RunnerFunc(func(ctx context.Context, query, profile string) (*api.PipelineResult, error) {
		if order != nil {
			*order = append(*order, "runner")
		}
		return &api.PipelineResult{Query: query, FinalAnswer: "answer"}, nil
	})
}

func TestChainAppliesMiddlewareInOrder(t *testing.T) {
	var order []string

	mw := func(name string) Middleware {
		return func(next DebateRunner) DebateRunner {
			return RunnerFunc(func(ctx context.Context, query, profile string) (*api.PipelineResult, error) {
				order = append(order, name+":before")
				result, err := next.Run(ctx, query, profile)
				order = append(order, name+":after")
				return result, err
			})
		}
	}

	chain := Chain(mw("first"), mw("second"), mw("third"))
	wrapped := chain(okRunner(&order))

	if _, err := wrapped.Run(context.Background(), "q", ""); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	expected := []string{
		"first:before", "second:before", "third:before",
		"runner",
		"third:after", "second:after", "first:after",
	}

	if len(order) != len(expected) {
		t.Fatalf("execution order length = %d, want %d: %v", len(order), len(expected), order)
	}
	for i, got := range order {
		if got != expected[i] {
			t.Errorf("order[%d] = %q, want %q", i, got, expected[i])
		}
	}
}

func TestRecoveryCatchesPanic(t *testing.T) {
	wrapped := Recovery()(RunnerFunc(func(ctx context.Context, query, profile string) (*api.PipelineResult, error) {
		panic("test panic")
	}))

	result, err := wrapped.Run(context.Background(), "q", "")
	if err == nil {
		t.Fatal("Run() error = nil, want recovered panic error")
	}
	if result != nil {
		t.Errorf("Run() result = %v, want nil", result)
	}

	perr := api.AsPipelineError("", err)
	if perr.Kind != api.ErrorKindProvider {
		t.Errorf("Kind = %q, want %q", perr.Kind, api.ErrorKindProvider)
	}
	if !strings.Contains(perr.Message, "test panic") {
		t.Errorf("Message = %q, want it to mention the panic value", perr.Message)
	}
}

func TestRecoveryPassesThroughSuccess(t *testing.T) {
	wrapped := Recovery()(okRunner(nil))
	result, err := wrapped.Run(context.Background(), "q", "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.FinalAnswer != "answer" {
		t.Errorf("FinalAnswer = %q, want %q", result.FinalAnswer, "answer")
	}
}

func TestRequestIDGeneratesWhenMissing(t *testing.T) {
	var captured string
	wrapped := RequestID()(RunnerFunc(func(ctx context.Context, query, profile string) (*api.PipelineResult, error) {
		captured = RequestIDFromContext(ctx)
		return &api.PipelineResult{}, nil
	}))

	if _, err := wrapped.Run(context.Background(), "q", ""); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if captured == "" {
		t.Error("request ID was not generated")
	}
}

func TestRequestIDPreservesExisting(t *testing.T) {
	var captured string
	wrapped := RequestID()(RunnerFunc(func(ctx context.Context, query, profile string) (*api.PipelineResult, error) {
		captured = RequestIDFromContext(ctx)
		return &api.PipelineResult{}, nil
	}))

	ctx := ContextWithRequestID(context.Background(), "req-from-header")
	if _, err := wrapped.Run(ctx, "q", ""); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if captured != "req-from-header" {
		t.Errorf("request ID = %q, want %q", captured, "req-from-header")
	}
}

func TestRequestIDFromContextEmpty(t *testing.T) {
	if id := RequestIDFromContext(context.Background()); id != "" {
		t.Errorf("RequestIDFromContext() = %q, want empty", id)
	}
}

func TestLoggingRecordsSuccessAndFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	wrapped := Logging(logger)(okRunner(nil))
	if _, err := wrapped.Run(context.Background(), "some query", "council"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "debate session completed") {
		t.Errorf("log output missing completion entry: %s", out)
	}
	if !strings.Contains(out, "profile=council") {
		t.Errorf("log output missing profile: %s", out)
	}

	buf.Reset()
	failing := Logging(logger)(RunnerFunc(func(ctx context.Context, query, profile string) (*api.PipelineResult, error) {
		return nil, api.NewAuthError("gemini", "bad key").WithStage("VERIFIER")
	}))
	if _, err := failing.Run(context.Background(), "q", ""); err == nil {
		t.Fatal("Run() error = nil, want error")
	}

	out = buf.String()
	if !strings.Contains(out, "debate session failed") {
		t.Errorf("log output missing failure entry: %s", out)
	}
	if !strings.Contains(out, "kind=auth_error") {
		t.Errorf("log output missing error kind: %s", out)
	}
	if !strings.Contains(out, "stage=VERIFIER") {
		t.Errorf("log output missing stage: %s", out)
	}
}

func TestLoggingNeverLogsQueryContent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	wrapped := Logging(logger)(okRunner(nil))
	if _, err := wrapped.Run(context.Background(), "super secret question", ""); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.Contains(buf.String(), "super secret") {
		t.Error("query content leaked into logs")
	}
}
