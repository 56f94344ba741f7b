package persona

import (
	"fmt"
	"strings"
)

// Profile describes the viewer. Supplied by the client over the control
// channel; read-only inside the pipeline.
type Profile struct {
	Name         string `json:"name"`
	FavoriteTeam string `json:"favorite_team"`
	RivalTeam    string `json:"rival_team"`

	// Sliders, 0-100.
	ExpertiseSlider int `json:"expertise_slider"` // 0 = newbie, 100 = film nerd
	HotTakeSlider   int `json:"hot_take_slider"`  // 0 = neutral, 100 = full homer

	AlmaMater       string   `json:"alma_mater"`
	Hometown        string   `json:"hometown"`
	FavoritePlayers []string `json:"favorite_players"`
	Interests       []string `json:"interests"`
}

// DefaultProfile returns the neutral baseline profile.
func DefaultProfile() *Profile {
	return &Profile{Name: "Fan", ExpertiseSlider: 50, HotTakeSlider: 50}
}

// HasPersonalContext reports whether the profile carries enough personal
// detail for the personal persona to work with.
func (p *Profile) HasPersonalContext() bool {
	return p.FavoriteTeam != "" || len(p.FavoritePlayers) > 0 || p.AlmaMater != ""
}

// ExpertiseDescription converts the expertise slider to an instruction.
func (p *Profile) ExpertiseDescription() string {
	switch {
	case p.ExpertiseSlider < 20:
		return "Complete beginner, explain everything simply and define terms like offside and free kick"
	case p.ExpertiseSlider < 50:
		return "Casual fan, knows the basics, explain complex plays and tactics"
	case p.ExpertiseSlider < 80:
		return "Knowledgeable, appreciates tactical analysis, use real football language"
	default:
		return "Film room nerd, loves formations, pressing triggers, expected goals, deep tactical breakdowns"
	}
}

// StyleInstruction converts the hot-take slider to a commentary style.
func (p *Profile) StyleInstruction() string {
	switch {
	case p.HotTakeSlider < 30:
		return "balanced and objective, call it fair for both sides"
	case p.HotTakeSlider < 60:
		return "engaged with some team bias, show extra energy for the viewer's team"
	default:
		return "full homer mode, celebrate their team, show empathy on bad plays, light trash talk for rivals"
	}
}

// ConnectionsSummary summarizes personal connections for the prompt.
func (p *Profile) ConnectionsSummary() string {
	var connections []string
	if len(p.FavoritePlayers) > 0 {
		connections = append(connections, "Favorite players: "+strings.Join(p.FavoritePlayers, ", "))
	}
	if p.AlmaMater != "" {
		connections = append(connections, "Alma mater: "+p.AlmaMater)
	}
	if p.Hometown != "" {
		connections = append(connections, "Hometown: "+p.Hometown)
	}
	return strings.Join(connections, "; ")
}

// PromptBlock builds the personalization block appended to the system
// prompt.
func (p *Profile) PromptBlock() string {
	var b strings.Builder
	b.WriteString("\n## Viewer Profile\n\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.Name)

	if p.FavoriteTeam != "" {
		fmt.Fprintf(&b, "- Favorite team: %s\n", p.FavoriteTeam)
		if p.RivalTeam != "" {
			fmt.Fprintf(&b, "- Rival team: %s\n", p.RivalTeam)
		}
	}

	fmt.Fprintf(&b, "- Expertise: %s\n", p.ExpertiseDescription())
	fmt.Fprintf(&b, "- Commentary style: %s\n", p.StyleInstruction())

	if connections := p.ConnectionsSummary(); connections != "" {
		fmt.Fprintf(&b, "- Personal connections: %s\n", connections)
	}
	if len(p.Interests) > 0 {
		fmt.Fprintf(&b, "- Interests: %s\n", strings.Join(p.Interests, ", "))
	}

	return b.String()
}

// PredefinedProfiles maps preset keys the client can select to ready-made
// viewer profiles.
var PredefinedProfiles = map[string]*Profile{
	"casual_fan": {
		Name:            "Alex",
		FavoriteTeam:    "Barcelona",
		ExpertiseSlider: 35,
		HotTakeSlider:   45,
		FavoritePlayers: []string{"Lamine Yamal", "Pedri"},
	},
	"new_to_soccer": {
		Name:            "Jordan",
		ExpertiseSlider: 10,
		HotTakeSlider:   20,
		Interests:       []string{"learning the rules", "understanding positions"},
	},
	"tactical_nerd": {
		Name:            "Sam",
		FavoriteTeam:    "Manchester City",
		RivalTeam:       "Arsenal",
		ExpertiseSlider: 95,
		HotTakeSlider:   30,
		FavoritePlayers: []string{"Kevin De Bruyne", "Rodri", "Erling Haaland"},
		Interests:       []string{"pressing systems", "expected goals", "set piece design"},
	},
	"passionate_homer": {
		Name:            "Danny",
		FavoriteTeam:    "Liverpool",
		RivalTeam:       "Manchester United",
		ExpertiseSlider: 60,
		HotTakeSlider:   90,
		FavoritePlayers: []string{"Mohamed Salah", "Virgil van Dijk"},
	},
}
