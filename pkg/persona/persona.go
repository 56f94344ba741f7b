// Package persona manages the commentator voices and viewer profiles that
// personalize commentary.
//
// A Persona is a commentator character: a style fragment for the system
// prompt, the scenes it prefers to speak over, and the synthesis voice it
// uses. A Profile describes the viewer and extends the prompt with
// personalization. A Selector rotates personas across commentary turns.
package persona

import "github.com/PreritO/cartesia-hackathon/pkg/scene"

// Well-known persona keys.
const (
	// KeyDefault is the play-by-play voice that carries most of the
	// broadcast.
	KeyDefault = "danny"

	// KeyAnalyst breaks down tactics between plays.
	KeyAnalyst = "coach_kay"

	// KeyColor fills quiet moments with texture and reactions.
	KeyColor = "rookie"

	// KeyPersonal speaks directly to the viewer using their profile.
	KeyPersonal = "personal"
)

// Persona is an immutable commentator descriptor. Loaded at startup; never
// mutated.
type Persona struct {
	Key             string        `yaml:"key" json:"key"`
	Label           string        `yaml:"label" json:"label"`
	StyleFragment   string        `yaml:"style" json:"-"`
	PreferredScenes []scene.Label `yaml:"preferred_scenes" json:"preferred_scenes,omitempty"`
	VoiceID         string        `yaml:"voice_id" json:"-"`
}

// Prefers reports whether the persona wants to speak over the given scene.
func (p *Persona) Prefers(label scene.Label) bool {
	for _, s := range p.PreferredScenes {
		if s == label {
			return true
		}
	}
	return false
}

// IsDefault reports whether this is the play-by-play persona, which is
// exempt from the no-two-in-a-row rule.
func (p *Persona) IsDefault() bool {
	return p.Key == KeyDefault
}

// Builtins returns the built-in commentator personas. Voice IDs come from
// configuration and are filled in by the caller.
func Builtins() []*Persona {
	return []*Persona{
		{
			Key:   KeyDefault,
			Label: "Danny",
			StyleFragment: "You are Danny, the lead play-by-play commentator. Fast, vivid, and always " +
				"on the ball. Keep the energy of a live broadcast and call the action as it happens.",
			PreferredScenes: []scene.Label{scene.ActivePlay},
		},
		{
			Key:   KeyAnalyst,
			Label: "Coach Kay",
			StyleFragment: "You are Coach Kay, a former head coach turned analyst. Calm and tactical. " +
				"Explain shape, spacing, and what the players are trying to set up.",
			PreferredScenes: []scene.Label{scene.PlayWithoutBall, scene.Transition},
		},
		{
			Key:   KeyColor,
			Label: "The Rookie",
			StyleFragment: "You are The Rookie, a first-year color commentator. Curious and enthusiastic. " +
				"React to faces, celebrations, and the atmosphere in the stadium.",
			PreferredScenes: []scene.Label{scene.CloseUp, scene.NoPlayers},
		},
		{
			Key:   KeyPersonal,
			Label: "Your Superfan",
			StyleFragment: "You are the viewer's personal superfan commentator. Weave in their favorite " +
				"team, players, and personal connections whenever the action gives you an opening.",
		},
	}
}
