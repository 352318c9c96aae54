package debate

import (
	"fmt"
	"time"
)

// StageSpec declaratively describes one debate stage.
type StageSpec struct {
	// Role is the stage's debate function.
	Role Role

	// Backend is the provider identifier that executes the stage.
	Backend string

	// Identity is the label shown in the transcript for this stage. It
	// decouples what the consumer sees from which backend actually ran:
	// two stages on the same backend may display as distinct
	// participants.
	Identity string

	// Visible controls whether the stage's entry appears in the returned
	// responses. Hidden stages still feed later prompt builders. FINAL
	// stages are excluded from responses regardless of this flag.
	Visible bool

	// Builder assembles the stage's input from the transcript so far.
	// Nil means the built-in builder for Role.
	Builder PromptBuilder

	// DelayAfter is an optional pause inserted after the stage's result
	// is appended and before the next stage starts. A rate-shaping knob
	// for request-rate-sensitive backends, not a correctness requirement.
	DelayAfter time.Duration
}

// builder returns the effective prompt builder for the stage.
func (s *StageSpec) builder() PromptBuilder {
	if s.Builder != nil {
		return s.Builder
	}
	return BuilderFor(s.Role)
}

// Profile is the ordered stage configuration defining one debate
// variant. Profiles are immutable once handed to an orchestrator;
// variants differ only in which backends fill which roles and what is
// shown, so adding a debate shape means adding a Profile value, not an
// orchestrator.
type Profile struct {
	Name   string
	Stages []StageSpec
}

// Validate checks the structural invariants of a profile: at least one
// stage, exactly one FINAL stage placed last, no missing backends or
// identities, non-negative delays, and each stage's built-in builder
// only referencing roles that run earlier.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile: name is required")
	}
	if len(p.Stages) == 0 {
		return fmt.Errorf("profile %s: at least one stage is required", p.Name)
	}

	finals := 0
	seen := map[Role]bool{}
	for i, s := range p.Stages {
		if _, err := ParseRole(string(s.Role)); err != nil {
			return fmt.Errorf("profile %s stage %d: %w", p.Name, i, err)
		}
		if s.Backend == "" {
			return fmt.Errorf("profile %s stage %d (%s): backend is required", p.Name, i, s.Role)
		}
		if s.Identity == "" {
			return fmt.Errorf("profile %s stage %d (%s): identity is required", p.Name, i, s.Role)
		}
		if s.DelayAfter < 0 {
			return fmt.Errorf("profile %s stage %d (%s): delay must be >= 0", p.Name, i, s.Role)
		}

		// Built-in builders reference earlier roles by name; custom
		// builders are the caller's responsibility.
		if s.Builder == nil {
			for _, req := range builderRequires[s.Role] {
				if !seen[req] {
					return fmt.Errorf("profile %s stage %d (%s): requires an earlier %s stage",
						p.Name, i, s.Role, req)
				}
			}
		}

		if s.Role == RoleFinal {
			finals++
			if i != len(p.Stages)-1 {
				return fmt.Errorf("profile %s: FINAL stage must be last", p.Name)
			}
		}
		seen[s.Role] = true
	}

	if finals != 1 {
		return fmt.Errorf("profile %s: exactly one FINAL stage is required, found %d", p.Name, finals)
	}

	return nil
}

// Backends returns the distinct provider identifiers the profile uses.
func (p *Profile) Backends() []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range p.Stages {
		if !seen[s.Backend] {
			seen[s.Backend] = true
			out = append(out, s.Backend)
		}
	}
	return out
}

// CouncilProfile is the default debate shape: four visible stages on
// four different backends, then a hidden final synthesis on the first
// backend.
func CouncilProfile() *Profile {
	return &Profile{
		Name: "council",
		Stages: []StageSpec{
			{Role: RoleInitiator, Backend: "openai", Identity: "GPT", Visible: true},
			{Role: RoleCritic, Backend: "anthropic", Identity: "CLAUDE", Visible: true},
			{Role: RoleVerifier, Backend: "gemini", Identity: "GEMINI", Visible: true},
			{Role: RoleSynthesizer, Backend: "grok", Identity: "GROK", Visible: true},
			{Role: RoleFinal, Backend: "openai", Identity: "GPT", Visible: false},
		},
	}
}

// MaskedProfile runs the whole debate against a single backend while
// displaying the stages as distinct council members. Exercises identity
// aliasing; useful when only one credential is configured.
func MaskedProfile(backend string) *Profile {
	return &Profile{
		Name: "masked",
		Stages: []StageSpec{
			{Role: RoleInitiator, Backend: backend, Identity: "SCHOLAR", Visible: true},
			{Role: RoleCritic, Backend: backend, Identity: "SKEPTIC", Visible: true},
			{Role: RoleVerifier, Backend: backend, Identity: "EXAMINER", Visible: true},
			{Role: RoleSynthesizer, Backend: backend, Identity: "MODERATOR", Visible: true},
			{Role: RoleFinal, Backend: backend, Identity: "MODERATOR", Visible: false},
		},
	}
}
