package dispatch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RoutingConfig maps effect types to device commands.
//
// It is loaded once and owned read-only by the Dispatcher; replacing the
// routing requires constructing a new Dispatcher.
//
// YAML shape:
//
//	effects:
//	  wind:
//	    device: fan-front
//	    command: set_speed
//	    parameters:
//	      - name: intensity
//	        mapping: {low: 60, medium: 150, high: 255}
//	        default: 100
type RoutingConfig struct {
	Effects map[string]EffectRoute `yaml:"effects" json:"effects"`
}

// EffectRoute declares the target device and command for one effect type.
type EffectRoute struct {
	Device     string          `yaml:"device" json:"device"`
	Command    string          `yaml:"command" json:"command"`
	Parameters []ParameterRule `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// ParameterRule declares how one named parameter is rewritten.
//
// When the caller supplies a value whose string form is a key in Mapping,
// the mapped value is substituted. When the caller omits the parameter and
// Default is set, the default is injected. Anything else passes through
// unchanged.
type ParameterRule struct {
	Name    string         `yaml:"name" json:"name"`
	Mapping map[string]any `yaml:"mapping,omitempty" json:"mapping,omitempty"`
	Default any            `yaml:"default,omitempty" json:"default,omitempty"`
}

// LoadRoutingConfig reads an effect-routing configuration from a YAML file.
func LoadRoutingConfig(path string) (*RoutingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading routing config: %w", err)
	}
	return ParseRoutingConfig(data)
}

// ParseRoutingConfig parses an effect-routing configuration from YAML bytes.
func ParseRoutingConfig(data []byte) (*RoutingConfig, error) {
	var cfg RoutingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing routing config: %w", err)
	}
	if cfg.Effects == nil {
		cfg.Effects = make(map[string]EffectRoute)
	}
	return &cfg, nil
}
