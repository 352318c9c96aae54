// Command demo runs a single query through the council pipeline and
// prints the transcript and final answer. By default it targets a local
// mock-backend; real keys switch it to the live services.
//
// Usage:
//
//	go run ./cmd/mock-backend &
//	go run ./cmd/demo "What is the capital of France?"
//
// Configuration:
//
//	DEMO_BACKEND_URL - base URL for all backends (default: http://localhost:9090)
//	OPENAI_API_KEY etc. - real credentials; when set, the matching
//	                      backend uses its public endpoint instead
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/councilofminds/council/pkg/debate"
	"github.com/councilofminds/council/pkg/provider"
	"github.com/councilofminds/council/pkg/provider/anthropic"
	"github.com/councilofminds/council/pkg/provider/gemini"
	"github.com/councilofminds/council/pkg/provider/openaicompat"
)

func main() {
	query := "What is the capital of France?"
	if len(os.Args) > 1 {
		query = strings.Join(os.Args[1:], " ")
	}

	mockURL := os.Getenv("DEMO_BACKEND_URL")
	if mockURL == "" {
		mockURL = "http://localhost:9090"
	}

	registry := provider.NewRegistry()
	if err := buildBackends(registry, mockURL); err != nil {
		fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
		os.Exit(1)
	}
	defer registry.Close()

	orch, err := debate.New(debate.CouncilProfile(), registry, debate.Config{
		CallTimeout: 2 * time.Minute,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== council demo ===")
	fmt.Printf("query: %s\n\n", query)

	result, err := orch.Run(context.Background(), query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "debate failed: %v\n", err)
		os.Exit(1)
	}

	for _, r := range result.Responses {
		fmt.Printf("--- %s (%s, %dms) ---\n%s\n\n", r.Agent, r.Role, r.Timestamp, r.Content)
	}
	fmt.Printf("=== final answer (%dms total) ===\n%s\n", result.Metadata.TotalTime, result.FinalAnswer)
}

// buildBackends registers the four council backends. Each one talks to
// the mock server unless a real key is present in the environment.
func buildBackends(registry *provider.Registry, mockURL string) error {
	policy := provider.DefaultRetryPolicy()

	openaiKey, openaiURL := pick("OPENAI_API_KEY", mockURL, "https://api.openai.com")
	oc, err := openaicompat.New(openaicompat.Config{
		Name: "openai", BaseURL: openaiURL, APIKey: openaiKey, Model: "gpt-4o",
	})
	if err != nil {
		return err
	}
	registry.Register(provider.WithRetry(oc, policy))

	grokKey, grokURL := pick("GROK_API_KEY", mockURL, "https://api.x.ai")
	gc, err := openaicompat.New(openaicompat.Config{
		Name: "grok", BaseURL: grokURL, APIKey: grokKey, Model: "grok-2-latest",
	})
	if err != nil {
		return err
	}
	registry.Register(provider.WithRetry(gc, policy))

	anthropicKey, anthropicURL := pick("ANTHROPIC_API_KEY", mockURL, "https://api.anthropic.com")
	ac, err := anthropic.New(anthropic.Config{
		APIKey: anthropicKey, BaseURL: anthropicURL, Model: "claude-sonnet-4-20250514",
	})
	if err != nil {
		return err
	}
	registry.Register(provider.WithRetry(ac, policy))

	geminiKey, geminiURL := pick("GEMINI_API_KEY", mockURL, "https://generativelanguage.googleapis.com")
	gem, err := gemini.New(gemini.Config{
		APIKey: geminiKey, BaseURL: geminiURL, Model: "gemini-2.0-flash",
	})
	if err != nil {
		return err
	}
	registry.Register(provider.WithRetry(gem, policy))

	return nil
}

// pick returns a demo key against the mock URL, or the real key against
// the real URL when the env var is set.
func pick(envKey, mockURL, realURL string) (key, url string) {
	if v := os.Getenv(envKey); v != "" {
		return v, realURL
	}
	return "demo-key", mockURL
}
