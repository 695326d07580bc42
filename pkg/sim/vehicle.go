// Package sim provides a simulated vehicle for running plans without
// hardware.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gwillem/mazerunner/pkg/robot"
)

// Motion is what the simulated vehicle is doing.
type Motion string

const (
	Parked    Motion = "parked"
	Ahead     Motion = "ahead"
	Astern    Motion = "astern"
	TurnLeft  Motion = "turn-left"
	TurnRight Motion = "turn-right"
)

// ErrInjected is returned by reads after Options.FailAfter is reached.
var ErrInjected = errors.New("sim: injected sensor fault")

// Options tune the simulation.
type Options struct {
	// Latency is added to every distance read.
	Latency time.Duration
	// FailAfter makes every read after the first FailAfter reads fail.
	// Zero disables fault injection.
	FailAfter int
	Logger    *zap.Logger
}

type key struct {
	unit robot.UnitName
	ch   robot.Channel
}

// Vehicle is a scripted vehicle that implements robot.Actuator and
// robot.Rangefinder. Each move, sensors start from a fixed corridor layout:
// while driving straight the leading sensor closes in on a wall, and while
// turning both side sensors open up until they cross the turn threshold.
type Vehicle struct {
	opts Options
	log  *zap.Logger

	mu       sync.Mutex
	rotation map[key]robot.Rotation
	enabled  map[key]bool
	motion   Motion
	reads    map[robot.SensorName]int
	total    int
	history  []Motion
}

var (
	_ robot.Actuator    = (*Vehicle)(nil)
	_ robot.Rangefinder = (*Vehicle)(nil)
)

// New creates a parked vehicle.
func New(opts Options) *Vehicle {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Vehicle{
		opts:     opts,
		log:      log,
		rotation: make(map[key]robot.Rotation),
		enabled:  make(map[key]bool),
		motion:   Parked,
		reads:    make(map[robot.SensorName]int),
	}
}

// Motion returns what the vehicle is currently doing.
func (v *Vehicle) Motion() Motion {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.motion
}

// History returns every motion started so far, in order.
func (v *Vehicle) History() []Motion {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Motion(nil), v.history...)
}

// Engaged reports whether any motor is enabled.
func (v *Vehicle) Engaged() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, on := range v.enabled {
		if on {
			return true
		}
	}
	return false
}

func checkTarget(unit robot.UnitName, ch robot.Channel) error {
	if unit != robot.FrontUnit && unit != robot.RearUnit {
		return fmt.Errorf("unknown drive unit %q", unit)
	}
	if ch != robot.ChannelA && ch != robot.ChannelB {
		return fmt.Errorf("unknown channel %q", ch)
	}
	return nil
}

// Enable implements robot.Actuator.
func (v *Vehicle) Enable(_ context.Context, unit robot.UnitName, ch robot.Channel) error {
	if err := checkTarget(unit, ch); err != nil {
		return &robot.IOError{Op: "enable", Target: string(unit) + "/" + string(ch), Err: err}
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled[key{unit, ch}] = true
	v.update()
	return nil
}

// Disable implements robot.Actuator.
func (v *Vehicle) Disable(_ context.Context, unit robot.UnitName, ch robot.Channel) error {
	if err := checkTarget(unit, ch); err != nil {
		return &robot.IOError{Op: "disable", Target: string(unit) + "/" + string(ch), Err: err}
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled[key{unit, ch}] = false
	v.update()
	return nil
}

// SetRotation implements robot.Actuator.
func (v *Vehicle) SetRotation(_ context.Context, unit robot.UnitName, ch robot.Channel, r robot.Rotation) error {
	if err := checkTarget(unit, ch); err != nil {
		return &robot.IOError{Op: "set_rotation", Target: string(unit) + "/" + string(ch), Err: err}
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rotation[key{unit, ch}] = r
	return nil
}

// update derives the motion from the motor state. Must hold v.mu.
func (v *Vehicle) update() {
	next := Parked
	if v.allEnabled() {
		a := v.rotation[key{robot.FrontUnit, robot.ChannelA}]
		b := v.rotation[key{robot.FrontUnit, robot.ChannelB}]
		switch {
		case a == robot.Forward && b == robot.Forward:
			next = Ahead
		case a == robot.Reverse && b == robot.Reverse:
			next = Astern
		case a == robot.Reverse:
			next = TurnLeft
		default:
			next = TurnRight
		}
	}
	if next == v.motion {
		return
	}
	v.motion = next
	clear(v.reads)
	if next != Parked {
		v.history = append(v.history, next)
	}
	v.log.Debug("motion changed", zap.String("motion", string(next)))
}

func (v *Vehicle) allEnabled() bool {
	for _, unit := range robot.AllUnits() {
		for _, ch := range robot.AllChannels() {
			if !v.enabled[key{unit, ch}] {
				return false
			}
		}
	}
	return true
}

// Distance implements robot.Rangefinder.
func (v *Vehicle) Distance(ctx context.Context, sensor robot.SensorName) (float64, error) {
	if v.opts.Latency > 0 {
		t := time.NewTimer(v.opts.Latency)
		select {
		case <-ctx.Done():
			t.Stop()
			return 0, ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return 0, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.total++
	if v.opts.FailAfter > 0 && v.total > v.opts.FailAfter {
		return 0, &robot.IOError{Op: "distance", Target: string(sensor), Err: ErrInjected}
	}
	n := v.reads[sensor]
	v.reads[sensor] = n + 1
	cm, ok := v.reading(sensor, n)
	if !ok {
		return 0, &robot.IOError{Op: "distance", Target: string(sensor), Err: errors.New("unknown sensor")}
	}
	return cm, nil
}

// reading returns the n-th reading of sensor in the current motion. Must
// hold v.mu.
func (v *Vehicle) reading(sensor robot.SensorName, n int) (float64, bool) {
	const (
		corridor = 20.0  // distance to a side wall
		open     = 100.0 // distance behind the vehicle
	)
	approach := max(120-4*float64(n), 5)

	switch sensor {
	case robot.Left, robot.Right:
		if v.motion == TurnLeft || v.motion == TurnRight {
			return corridor + 3*float64(n), true
		}
		return corridor, true
	case robot.Front:
		if v.motion == Ahead {
			return approach, true
		}
		return open, true
	case robot.Rear:
		if v.motion == Astern {
			return approach, true
		}
		return open, true
	}
	return 0, false
}
