// Package robot provides abstractions for the vehicle hardware: two drive
// units with two motor channels each, and four ultrasonic rangefinders.
package robot

import "context"

// UnitName identifies a drive unit (one H-bridge driving a pair of motors).
type UnitName string

// Drive units of the vehicle.
const (
	FrontUnit UnitName = "front"
	RearUnit  UnitName = "rear"
)

// AllUnits returns all drive units in order.
func AllUnits() []UnitName {
	return []UnitName{FrontUnit, RearUnit}
}

// Channel identifies one motor on a drive unit.
type Channel string

const (
	ChannelA Channel = "a"
	ChannelB Channel = "b"
)

// AllChannels returns both channels of a drive unit.
func AllChannels() []Channel {
	return []Channel{ChannelA, ChannelB}
}

// Rotation is the direction a motor spins in.
type Rotation int

const (
	Forward Rotation = iota
	Reverse
)

func (r Rotation) String() string {
	if r == Reverse {
		return "reverse"
	}
	return "forward"
}

// SensorName identifies a rangefinder by where it faces.
type SensorName string

// Rangefinders of the vehicle.
const (
	Front SensorName = "front"
	Rear  SensorName = "rear"
	Left  SensorName = "left"
	Right SensorName = "right"
)

// AllSensors returns all rangefinders in order.
func AllSensors() []SensorName {
	return []SensorName{Front, Rear, Left, Right}
}

// Sample is one distance reading.
type Sample struct {
	Sensor      SensorName
	Centimeters float64
}

// Actuator controls the drive motors.
type Actuator interface {
	Enable(ctx context.Context, unit UnitName, ch Channel) error
	Disable(ctx context.Context, unit UnitName, ch Channel) error
	SetRotation(ctx context.Context, unit UnitName, ch Channel, r Rotation) error
}

// Rangefinder reads distances in centimeters. Distance blocks until a
// reading is available or ctx is done.
type Rangefinder interface {
	Distance(ctx context.Context, sensor SensorName) (float64, error)
}
