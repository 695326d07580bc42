package robot

import "fmt"

// IOError reports a single failed hardware read or write.
type IOError struct {
	Op     string // "enable", "disable", "set_rotation", "distance"
	Target string // e.g. "front/a" or "left"
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ConfigError reports a missing or invalid wiring assignment.
type ConfigError struct {
	Field  string // e.g. "front_motors.enable_a"
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}
