package persona

import "github.com/PreritO/cartesia-hackathon/pkg/scene"

// personalEvery routes every Nth turn to the personal persona when the
// viewer profile has personal context.
const personalEvery = 4

// Selector picks which persona speaks each commentary turn. Per-session
// state; not safe for concurrent use.
type Selector struct {
	registry *Registry

	turnCount int
	lastKey   string
}

// NewSelector creates a selector over the given registry.
func NewSelector(registry *Registry) *Selector {
	return &Selector{registry: registry}
}

// TurnCount returns the number of turns selected so far.
func (s *Selector) TurnCount() int {
	return s.turnCount
}

// Next increments the turn counter and selects the persona for this turn.
//
// Every 4th turn goes to the personal persona when the profile carries
// personal context. Otherwise the persona preferring the current scene is
// chosen, except that a non-default persona never speaks twice in a row;
// the default play-by-play persona is exempt since it carries most of the
// broadcast.
func (s *Selector) Next(label scene.Label, profile *Profile) *Persona {
	s.turnCount++

	if s.turnCount%personalEvery == 0 && profile != nil && profile.HasPersonalContext() {
		if p, err := s.registry.Get(KeyPersonal); err == nil {
			s.lastKey = p.Key
			return p
		}
	}

	candidate := s.registry.Default()
	for _, p := range s.registry.List() {
		if p.Key == KeyPersonal {
			continue
		}
		if p.Prefers(label) {
			candidate = p
			break
		}
	}

	if candidate.Key == s.lastKey && !candidate.IsDefault() {
		candidate = s.registry.Default()
	}

	s.lastKey = candidate.Key
	return candidate
}

// Reset clears rotation state, as on session restart.
func (s *Selector) Reset() {
	s.turnCount = 0
	s.lastKey = ""
}
