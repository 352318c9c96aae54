package huggingface

import (
	"encoding/json"
	"strings"

	"github.com/councilofminds/council/pkg/api"
)

// generation is the structured success shape: an object with the
// generated text in a known field.
type generation struct {
	GeneratedText string `json:"generated_text"`
}

// markers are the instruction-format control tokens the backend may echo
// back inside the generated text.
var markers = []string{"[/INST]", "[INST]", "<s>", "</s>"}

// Normalize reconciles a raw Inference API success body into canonical
// text. Recognized shapes, tried in order: a one-element array of
// generation objects, a single generation object, and a bare JSON
// string. After extraction the instruction markers are stripped and
// surrounding whitespace trimmed.
//
// An unrecognized shape fails with malformed_response, as does text that
// is empty after stripping; the latter carries the distinct "empty
// response" message so callers can tell "backend replied with nothing"
// from transport failure.
func Normalize(raw []byte) (string, *api.PipelineError) {
	text, ok := extract(raw)
	if !ok {
		return "", api.NewMalformedResponseError("huggingface",
			"unrecognized response shape")
	}

	for _, marker := range markers {
		text = strings.ReplaceAll(text, marker, "")
	}
	text = strings.TrimSpace(text)

	if text == "" {
		return "", api.NewMalformedResponseError("huggingface", "empty response")
	}
	return text, nil
}

func extract(raw []byte) (string, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return "", false
	}

	switch trimmed[0] {
	case '[':
		// Legacy shape: array of generation objects, first element wins.
		var gens []generation
		if err := json.Unmarshal(raw, &gens); err != nil || len(gens) == 0 {
			return "", false
		}
		return gens[0].GeneratedText, true

	case '{':
		var gen generation
		if err := json.Unmarshal(raw, &gen); err != nil || gen.GeneratedText == "" {
			return "", false
		}
		return gen.GeneratedText, true

	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true

	default:
		return "", false
	}
}
