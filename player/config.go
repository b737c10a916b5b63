package player

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// MovementConfig holds the tuning of the player movement.
// Speeds are in units per second, accelerations are multipliers of the wish speed per second.
type MovementConfig struct {
	JumpVelocity  float64 `yaml:"jump_velocity"`
	StopSpeed     float64 `yaml:"stop_speed"`
	Accelerate    float64 `yaml:"accelerate"`
	AirAccelerate float64 `yaml:"air_accelerate"`
	Friction      float64 `yaml:"friction"`
	Speed         float64 `yaml:"speed"`
	Gravity       float64 `yaml:"gravity"`
}

// DefaultMovementConfig returns the classic Quake III movement values
func DefaultMovementConfig() MovementConfig {
	return MovementConfig{
		JumpVelocity:  270,
		StopSpeed:     100,
		Accelerate:    10,
		AirAccelerate: 1,
		Friction:      6,
		Speed:         320,
		Gravity:       800,
	}
}

// LoadMovementConfig reads a YAML movement config from path.
// Keys missing from the file keep their default value.
func LoadMovementConfig(path string) (MovementConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MovementConfig{}, errors.Wrapf(err, "read movement config %s", path)
	}

	config, err := ParseMovementConfig(data)
	if err != nil {
		return MovementConfig{}, errors.Wrapf(err, "load movement config %s", path)
	}
	return config, nil
}

// ParseMovementConfig decodes a YAML document over the default values.
// Unknown keys are rejected.
func ParseMovementConfig(data []byte) (MovementConfig, error) {
	config := DefaultMovementConfig()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return MovementConfig{}, errors.Wrap(err, "decode movement config")
	}

	if err := config.Validate(); err != nil {
		return MovementConfig{}, err
	}
	return config, nil
}

// Validate rejects values the movement code cannot work with
func (c MovementConfig) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"jump_velocity", c.JumpVelocity},
		{"stop_speed", c.StopSpeed},
		{"accelerate", c.Accelerate},
		{"air_accelerate", c.AirAccelerate},
		{"friction", c.Friction},
		{"speed", c.Speed},
	}
	for _, field := range fields {
		if field.value < 0 {
			return errors.Errorf("invalid movement config: %s must not be negative, got %v", field.name, field.value)
		}
	}

	if c.Gravity <= 0 {
		return errors.Errorf("invalid movement config: gravity must be positive, got %v", c.Gravity)
	}
	return nil
}
