package robot

import (
	"encoding/json"
	"fmt"
	"os"
)

const DefaultConfigFile = "mazerunner.json"

// Config holds the vehicle wiring. Pins are GPIO names as known to the host
// driver, e.g. "GPIO17".
type Config struct {
	FrontMotors MotorPins    `json:"front_motors"`
	RearMotors  MotorPins    `json:"rear_motors"`
	FrontSonar  SonarPins    `json:"front_sonar"`
	RearSonar   SonarPins    `json:"rear_sonar"`
	LeftSonar   SonarPins    `json:"left_sonar"`
	RightSonar  SonarPins    `json:"right_sonar"`
	Retry       RetryPolicy  `json:"retry"`
	Calibration *Calibration `json:"calibration,omitempty"`
}

// MotorPins is the wiring of one dual H-bridge.
type MotorPins struct {
	EnableA string `json:"enable_a"`
	InA1    string `json:"in_a1"`
	InA2    string `json:"in_a2"`
	EnableB string `json:"enable_b"`
	InB1    string `json:"in_b1"`
	InB2    string `json:"in_b2"`
}

// SonarPins is the wiring of one ultrasonic rangefinder.
type SonarPins struct {
	Trigger string `json:"trigger"`
	Echo    string `json:"echo"`
}

// DefaultConfig returns the wiring of the reference vehicle.
func DefaultConfig() Config {
	return Config{
		FrontMotors: MotorPins{"GPIO2", "GPIO3", "GPIO4", "GPIO22", "GPIO17", "GPIO27"},
		RearMotors:  MotorPins{"GPIO10", "GPIO9", "GPIO11", "GPIO19", "GPIO5", "GPIO6"},
		FrontSonar:  SonarPins{"GPIO14", "GPIO15"},
		RearSonar:   SonarPins{"GPIO18", "GPIO23"},
		LeftSonar:   SonarPins{"GPIO24", "GPIO25"},
		RightSonar:  SonarPins{"GPIO8", "GPIO7"},
		Retry:       DefaultRetryPolicy(),
	}
}

// PinField is one named pin assignment. Pin points into the Config, so
// setting it changes the assignment.
type PinField struct {
	Field string
	Pin   *string
}

// Pins lists every assignment in a fixed order.
func (c *Config) Pins() []PinField {
	var out []PinField
	motors := []struct {
		name string
		p    *MotorPins
	}{{"front_motors", &c.FrontMotors}, {"rear_motors", &c.RearMotors}}
	for _, m := range motors {
		out = append(out,
			PinField{m.name + ".enable_a", &m.p.EnableA},
			PinField{m.name + ".in_a1", &m.p.InA1},
			PinField{m.name + ".in_a2", &m.p.InA2},
			PinField{m.name + ".enable_b", &m.p.EnableB},
			PinField{m.name + ".in_b1", &m.p.InB1},
			PinField{m.name + ".in_b2", &m.p.InB2},
		)
	}
	for _, s := range c.sonars() {
		out = append(out,
			PinField{string(s.name) + "_sonar.trigger", &s.p.Trigger},
			PinField{string(s.name) + "_sonar.echo", &s.p.Echo},
		)
	}
	return out
}

type sonarField struct {
	name SensorName
	p    *SonarPins
}

func (c *Config) sonars() []sonarField {
	return []sonarField{
		{Front, &c.FrontSonar},
		{Rear, &c.RearSonar},
		{Left, &c.LeftSonar},
		{Right, &c.RightSonar},
	}
}

// Validate checks that every pin is assigned exactly once. The returned
// error is a *ConfigError naming the offending field.
func (c *Config) Validate() error {
	seen := make(map[string]string)
	for _, pf := range c.Pins() {
		if *pf.Pin == "" {
			return &ConfigError{Field: pf.Field, Reason: "pin not assigned"}
		}
		if other, ok := seen[*pf.Pin]; ok {
			return &ConfigError{Field: pf.Field, Reason: fmt.Sprintf("pin %s already assigned to %s", *pf.Pin, other)}
		}
		seen[*pf.Pin] = pf.Field
	}
	if err := c.Retry.Validate(); err != nil {
		return err
	}
	if c.Calibration != nil {
		return c.Calibration.Validate()
	}
	return nil
}

// Thresholds returns the configured calibration or the default one.
func (c *Config) Thresholds() Calibration {
	if c.Calibration != nil {
		return *c.Calibration
	}
	return DefaultCalibration()
}

// LoadConfigFrom loads and validates configuration from a specific file.
// Omitted retry settings fall back to DefaultRetryPolicy.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Config{Retry: DefaultRetryPolicy()}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists reports whether a config file is present at path.
func ConfigExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
