package debate

import (
	"fmt"
	"strings"
)

// Role identifies a stage's function in the debate.
type Role string

const (
	RoleInitiator   Role = "INITIATOR"
	RoleCritic      Role = "CRITIC"
	RoleVerifier    Role = "VERIFIER"
	RoleSynthesizer Role = "SYNTHESIZER"

	// RoleFinal produces the final synthesized answer. Exactly one stage
	// per profile carries it, it must run last, and its output never
	// appears in the visible transcript.
	RoleFinal Role = "FINAL"
)

// ParseRole converts a string (as found in YAML profiles) to a Role.
// Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(s)); r {
	case RoleInitiator, RoleCritic, RoleVerifier, RoleSynthesizer, RoleFinal:
		return r, nil
	default:
		return "", fmt.Errorf("unknown debate role %q", s)
	}
}
