// Package debug provides category-based debug logging for the council
// service, layered over log/slog.
//
// Two orthogonal controls:
//   - Categories (WHAT to debug): COUNCIL_DEBUG env or config
//   - Level (HOW MUCH detail): COUNCIL_LOG_LEVEL env or config
//
// Usage:
//
//	debug.Log("providers", "request sent", "url", url)
//	if debug.Enabled("debate") { /* expensive formatting */ }
//
// Categories: providers, debate, transport, config, auth, all.
package debug

import (
	"log/slog"
	"os"
	"strings"
)

// categories holds the set of enabled debug categories.
// Access is read-only after Init(), so no synchronization needed.
var categories map[string]bool

func init() {
	// Picked up from the environment immediately so early startup code
	// can log before Init() runs with config values.
	categories = parseCategories(os.Getenv("COUNCIL_DEBUG"))
}

// Init configures debug categories and the global slog level from config
// values. Environment variables take precedence over config.
func Init(configCategories, configLevel string) {
	cats := os.Getenv("COUNCIL_DEBUG")
	if cats == "" {
		cats = configCategories
	}
	categories = parseCategories(cats)

	level := os.Getenv("COUNCIL_LOG_LEVEL")
	if level == "" {
		level = configLevel
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})))
}

// Enabled reports whether debug output is active for the given category.
func Enabled(category string) bool {
	return categories["all"] || categories[category]
}

// Log emits a debug message for the given category. A disabled category
// makes this a no-op.
func Log(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// ParseLevel converts a level string to a slog.Level. Unknown values
// fall back to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Categories returns the enabled categories, for health reporting.
func Categories() []string {
	var result []string
	for k := range categories {
		result = append(result, k)
	}
	return result
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	for _, cat := range strings.Split(s, ",") {
		cat = strings.TrimSpace(strings.ToLower(cat))
		if cat != "" {
			m[cat] = true
		}
	}
	return m
}
