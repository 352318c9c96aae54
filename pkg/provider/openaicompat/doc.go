// Package openaicompat implements the provider contract for any backend
// speaking the OpenAI Chat Completions protocol.
//
// Two council backends share this adapter: OpenAI itself (the GPT
// initiator and final synthesizer) and xAI Grok (the synthesizer), which
// exposes the identical wire format at a different base URL. The adapter
// is parameterized by provider name, base URL, API key, and model, so
// each backend gets its own Client instance with its own attribution.
package openaicompat
