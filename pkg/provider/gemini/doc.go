// Package gemini implements the provider contract for the Google Gemini
// generateContent API (the verifier in the default council profile).
//
// Gemini authenticates with a key query parameter, takes the system
// prompt as a systemInstruction object, and returns text split across
// candidate content parts which the adapter concatenates.
package gemini
