// Package provider defines the uniform call contract over one external
// LLM backend, plus the retry wrapper applied to every adapter.
//
// Each adapter (openaicompat, anthropic, gemini, huggingface) translates
// a (system prompt, user message) pair into one completed text response,
// hiding transport and response-envelope differences behind the Provider
// interface. Adapters hold no cross-call state: every piece of debate
// context arrives in the user message built by the orchestrator.
package provider
