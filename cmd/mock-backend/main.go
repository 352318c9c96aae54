// Command mock-backend runs a deterministic server emulating all four
// upstream wire protocols the council speaks: Chat Completions (OpenAI
// and Grok), Anthropic Messages, Gemini generateContent, and the
// Hugging Face Inference API. Responses are derived from the incoming
// prompt so a full debate session produces a readable transcript
// without real credentials.
//
// Configuration:
//
//	MOCK_PORT - Listen port (default: 9090)
//	MOCK_HF_SHAPE - Hugging Face envelope shape: array, object, or
//	                string (default: array)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}
	hfShape := os.Getenv("MOCK_HF_SHAPE")
	if hfShape == "" {
		hfShape = "array"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", handleChatCompletions)
	mux.HandleFunc("POST /v1/messages", handleAnthropicMessages)
	mux.HandleFunc("POST /v1beta/models/{model}", handleGemini)
	mux.HandleFunc("POST /models/{owner}/{model}", hfHandler(hfShape))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock backend starting", "port", port, "hf_shape", hfShape)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// reply derives deterministic content from the system prompt and user
// message: the stage role is inferred from the system prompt so the
// transcript reads like a debate rather than five identical strings.
func reply(system, user string) string {
	role := "PANELIST"
	switch {
	case strings.Contains(system, "FINAL SYNTHESIZER"):
		role = "FINAL"
	case strings.Contains(system, "INITIATOR"):
		role = "INITIATOR"
	case strings.Contains(system, "CRITIC"):
		role = "CRITIC"
	case strings.Contains(system, "VERIFIER"):
		role = "VERIFIER"
	case strings.Contains(system, "SYNTHESIZER"):
		role = "SYNTHESIZER"
	}

	h := fnv.New32a()
	h.Write([]byte(user))
	return fmt.Sprintf("[%s mock %08x] response to %d input bytes", role, h.Sum32(), len(user))
}

// --- Chat Completions (OpenAI / Grok) ---

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":{"message":"invalid JSON"}}`, http.StatusBadRequest)
		return
	}

	var system, user string
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			system = m.Content
		case "user":
			user = m.Content
		}
	}

	writeJSON(w, map[string]any{
		"id":     "chatcmpl-mock",
		"object": "chat.completion",
		"model":  req.Model,
		"choices": []map[string]any{{
			"index": 0,
			"message": map[string]any{
				"role":    "assistant",
				"content": reply(system, user),
			},
			"finish_reason": "stop",
		}},
	})
}

// --- Anthropic Messages ---

type anthropicRequest struct {
	Model    string `json:"model"`
	System   string `json:"system"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func handleAnthropicMessages(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("x-api-key") == "" {
		http.Error(w, `{"type":"error","error":{"type":"authentication_error","message":"missing x-api-key"}}`, http.StatusUnauthorized)
		return
	}

	var req anthropicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"type":"error","error":{"type":"invalid_request_error"}}`, http.StatusBadRequest)
		return
	}

	var user string
	for _, m := range req.Messages {
		if m.Role == "user" {
			user = m.Content
		}
	}

	writeJSON(w, map[string]any{
		"id":    "msg-mock",
		"type":  "message",
		"role":  "assistant",
		"model": req.Model,
		"content": []map[string]any{
			{"type": "text", "text": reply(req.System, user)},
		},
		"stop_reason": "end_turn",
	})
}

// --- Gemini generateContent ---

type geminiRequest struct {
	SystemInstruction struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"systemInstruction"`
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

func handleGemini(w http.ResponseWriter, r *http.Request) {
	// Path is /v1beta/models/{model}:generateContent; the mux pattern
	// captures "{model}:generateContent" as one segment.
	if !strings.HasSuffix(r.PathValue("model"), ":generateContent") {
		http.NotFound(w, r)
		return
	}
	if r.URL.Query().Get("key") == "" {
		http.Error(w, `{"error":{"code":403,"status":"PERMISSION_DENIED"}}`, http.StatusForbidden)
		return
	}

	var req geminiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":{"code":400,"status":"INVALID_ARGUMENT"}}`, http.StatusBadRequest)
		return
	}

	var system, user string
	for _, p := range req.SystemInstruction.Parts {
		system += p.Text
	}
	for _, c := range req.Contents {
		for _, p := range c.Parts {
			user += p.Text
		}
	}

	writeJSON(w, map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"role": "model",
				"parts": []map[string]any{
					{"text": reply(system, user)},
				},
			},
			"finishReason": "STOP",
		}},
	})
}

// --- Hugging Face Inference ---

type hfRequest struct {
	Inputs string `json:"inputs"`
}

// hfHandler returns a handler producing one of the three envelope
// shapes the Inference API is known to emit.
func hfHandler(shape string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req hfRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
			return
		}

		text := reply(req.Inputs, req.Inputs)
		switch shape {
		case "object":
			writeJSON(w, map[string]any{"generated_text": text})
		case "string":
			writeJSON(w, text)
		default:
			writeJSON(w, []map[string]any{{"generated_text": text}})
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
