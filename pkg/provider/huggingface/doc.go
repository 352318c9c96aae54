// Package huggingface implements the provider contract for models served
// through the Hugging Face Inference API (Mistral in the council's
// alternate profiles).
//
// The Inference API has two quirks the adapter absorbs. It exposes a
// single combined prompt rather than separate system and user slots, so
// the adapter synthesizes the separation with Mistral's [INST] format.
// And its success envelope is not stable across deployments: the body
// may be a JSON array of generations, a single generation object, or a
// bare string. Normalize reconciles all three into canonical text.
package huggingface
