package debate

import (
	"context"
	"fmt"

	"github.com/councilofminds/council/pkg/api"
)

// Service fronts a set of orchestrators, one per configured profile, and
// dispatches each session to the requested one. Profiles are fixed at
// construction; the map is read-only afterwards, so concurrent sessions
// need no locking.
type Service struct {
	orchestrators map[string]*Orchestrator
	defaultName   string
}

// NewService creates a Service from one or more orchestrators.
// defaultName selects the profile used when a request names none; it
// must match one of the orchestrators' profiles.
func NewService(defaultName string, orchs ...*Orchestrator) (*Service, error) {
	if len(orchs) == 0 {
		return nil, fmt.Errorf("service: at least one orchestrator is required")
	}

	m := make(map[string]*Orchestrator, len(orchs))
	for _, o := range orchs {
		name := o.Profile().Name
		if _, dup := m[name]; dup {
			return nil, fmt.Errorf("service: duplicate profile %q", name)
		}
		m[name] = o
	}

	if defaultName == "" {
		defaultName = orchs[0].Profile().Name
	}
	if _, ok := m[defaultName]; !ok {
		return nil, fmt.Errorf("service: default profile %q not configured", defaultName)
	}

	return &Service{orchestrators: m, defaultName: defaultName}, nil
}

// Run executes one debate session. An empty profile name selects the
// default; an unknown one is a caller mistake.
func (s *Service) Run(ctx context.Context, query, profile string) (*api.PipelineResult, error) {
	if profile == "" {
		profile = s.defaultName
	}
	o, ok := s.orchestrators[profile]
	if !ok {
		return nil, api.NewInvalidQueryError(fmt.Sprintf("unknown debate profile %q", profile))
	}
	return o.Run(ctx, query)
}

// Profiles returns the configured profile names.
func (s *Service) Profiles() []string {
	out := make([]string, 0, len(s.orchestrators))
	for name := range s.orchestrators {
		out = append(out, name)
	}
	return out
}
