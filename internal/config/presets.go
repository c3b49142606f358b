package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/topowall/internal/entropy"
)

//go:embed presets.yaml
var builtinPresets []byte

// Preset is a named partial configuration.
type Preset struct {
	Name   string    `yaml:"name"`
	Config yaml.Node `yaml:"config"`
}

// Presets is an ordered preset list.
type Presets []Preset

// BuiltinPresets parses the embedded preset file.
func BuiltinPresets() Presets {
	p, err := ParsePresets(builtinPresets)
	if err != nil {
		panic(fmt.Sprintf("config: embedded presets: %v", err))
	}
	return p
}

// ParsePresets decodes a YAML preset list.
func ParsePresets(raw []byte) (Presets, error) {
	var p Presets
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("presets: %w", err)
	}
	for i, pr := range p {
		if pr.Name == "" {
			return nil, fmt.Errorf("presets: entry %d has no name", i)
		}
	}
	return p, nil
}

// LoadPresets returns the built-in presets followed by those in path.
// A user preset with a built-in name replaces it. An empty path loads
// only the built-ins.
func LoadPresets(path string) (Presets, error) {
	p := BuiltinPresets()
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("presets: %w", err)
	}
	user, err := ParsePresets(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, u := range user {
		if i := p.index(u.Name); i >= 0 {
			p[i] = u
		} else {
			p = append(p, u)
		}
	}
	return p, nil
}

func (p Presets) index(name string) int {
	for i, pr := range p {
		if pr.Name == name {
			return i
		}
	}
	return -1
}

// Names lists preset names in order.
func (p Presets) Names() []string {
	names := make([]string, len(p))
	for i, pr := range p {
		names[i] = pr.Name
	}
	return names
}

// Apply overlays the named preset onto c and gives it a fresh seed from rng.
func (p Presets) Apply(c *Config, name string, rng *entropy.Stream) error {
	i := p.index(name)
	if i < 0 {
		return fmt.Errorf("unknown preset %q", name)
	}
	next := *c
	if err := p[i].Config.Decode(&next); err != nil {
		return fmt.Errorf("preset %q: %w", name, err)
	}
	next.Seed = rng.SeedString(8)
	*c = next
	return nil
}
