package robot

import (
	"encoding/json"
	"fmt"
	"os"
)

// Calibration holds the distance thresholds used to detect intersections.
type Calibration struct {
	// TurnThreshold is crossed by a side sensor when a turn completes.
	TurnThreshold float64 `json:"turn_cm"`
	// WallThreshold is undercut by the leading sensor when a wall is ahead.
	WallThreshold float64 `json:"wall_cm"`
	// OpeningThreshold is exceeded by a side sensor when a side corridor opens.
	OpeningThreshold float64 `json:"opening_cm"`
}

// DefaultCalibration returns the thresholds measured on the reference vehicle.
func DefaultCalibration() Calibration {
	return Calibration{
		TurnThreshold:    43.0,
		WallThreshold:    35.75,
		OpeningThreshold: 43.0,
	}
}

// LoadCalibration loads calibration data from a JSON file. Fields missing
// from the file keep their default values.
func LoadCalibration(path string) (Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Calibration{}, fmt.Errorf("read calibration file: %w", err)
	}

	cal := DefaultCalibration()
	if err := json.Unmarshal(data, &cal); err != nil {
		return Calibration{}, fmt.Errorf("parse calibration JSON: %w", err)
	}
	if err := cal.Validate(); err != nil {
		return Calibration{}, err
	}
	return cal, nil
}

// Validate checks that every threshold is positive.
func (c Calibration) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"calibration.turn_cm", c.TurnThreshold},
		{"calibration.wall_cm", c.WallThreshold},
		{"calibration.opening_cm", c.OpeningThreshold},
	}
	for _, f := range fields {
		if f.v <= 0 {
			return &ConfigError{Field: f.name, Reason: fmt.Sprintf("must be positive, got %g", f.v)}
		}
	}
	return nil
}
