package persona

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// personaFile is the on-disk persona configuration shape.
type personaFile struct {
	Personas []*Persona `yaml:"personas"`
}

// LoadFile reads personas from a YAML file and registers them, replacing
// built-ins with matching keys. The file shape:
//
//	personas:
//	  - key: danny
//	    label: Danny
//	    style: "You are Danny..."
//	    preferred_scenes: [active_play]
//	    voice_id: abc123
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read persona file: %w", err)
	}

	var f personaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse persona file %s: %w", path, err)
	}

	for _, p := range f.Personas {
		if p.Key == "" {
			return fmt.Errorf("persona file %s: persona with empty key", path)
		}
		r.Register(p)
	}

	return nil
}
