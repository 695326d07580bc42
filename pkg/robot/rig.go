package robot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PinResolver looks up a GPIO pin by name. It returns nil for unknown pins.
type PinResolver func(name string) gpio.PinIO

// Options tune how a Rig is opened.
type Options struct {
	// Resolve looks up pins. When nil the host drivers are initialized and
	// pins are looked up in the periph registry.
	Resolve     PinResolver
	EchoTimeout time.Duration
	Logger      *zap.Logger
}

// Rig is the assembled vehicle hardware. It implements Actuator and
// Rangefinder.
type Rig struct {
	drives map[UnitName]*Drive
	sonars map[SensorName]*Sonar
	pins   []gpio.PinIO
	log    *zap.Logger
}

var (
	_ Actuator    = (*Rig)(nil)
	_ Rangefinder = (*Rig)(nil)
)

// Open validates cfg, resolves every pin and initializes pin directions
// under cfg.Retry.
func Open(ctx context.Context, cfg *Config, opts Options) (*Rig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	resolve := opts.Resolve
	if resolve == nil {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("init host drivers: %w", err)
		}
		resolve = gpioreg.ByName
	}

	byField := make(map[string]gpio.PinIO)
	r := &Rig{
		drives: make(map[UnitName]*Drive),
		sonars: make(map[SensorName]*Sonar),
		log:    log,
	}
	for _, pf := range cfg.Pins() {
		p := resolve(*pf.Pin)
		if p == nil {
			return nil, &ConfigError{Field: pf.Field, Reason: fmt.Sprintf("unknown pin %s", *pf.Pin)}
		}
		byField[pf.Field] = p
		r.pins = append(r.pins, p)
	}

	units := []struct {
		name  UnitName
		field string
	}{{FrontUnit, "front_motors"}, {RearUnit, "rear_motors"}}

	attempt := 0
	err := cfg.Retry.Do(ctx, func() error {
		attempt++
		for _, u := range units {
			f := func(s string) gpio.PinIO { return byField[u.field+"."+s] }
			for _, s := range []string{"enable_a", "in_a1", "in_a2", "enable_b", "in_b1", "in_b2"} {
				if err := f(s).Out(gpio.Low); err != nil {
					return fmt.Errorf("%s.%s: %w", u.field, s, err)
				}
			}
			r.drives[u.name] = NewDrive(f("enable_a"), f("in_a1"), f("in_a2"), f("enable_b"), f("in_b1"), f("in_b2"))
		}
		for _, s := range cfg.sonars() {
			field := string(s.name) + "_sonar"
			sonar, err := NewSonar(byField[field+".trigger"], byField[field+".echo"], opts.EchoTimeout)
			if err != nil {
				return fmt.Errorf("%s: %w", field, err)
			}
			r.sonars[s.name] = sonar
		}
		return nil
	}, func(err error, next time.Duration) {
		log.Warn("pin initialization failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("next", next),
			zap.Error(err))
	})
	if err != nil {
		r.halt()
		return nil, fmt.Errorf("initialize pins after %d attempts: %w", attempt, err)
	}

	log.Info("rig ready", zap.Int("pins", len(r.pins)), zap.Int("attempts", attempt))
	return r, nil
}

func (r *Rig) drive(unit UnitName) (*Drive, error) {
	d, ok := r.drives[unit]
	if !ok {
		return nil, fmt.Errorf("unknown drive unit %q", unit)
	}
	return d, nil
}

func target(unit UnitName, ch Channel) string {
	return string(unit) + "/" + string(ch)
}

// Enable implements Actuator.
func (r *Rig) Enable(_ context.Context, unit UnitName, ch Channel) error {
	d, err := r.drive(unit)
	if err == nil {
		err = d.Enable(ch)
	}
	if err != nil {
		return &IOError{Op: "enable", Target: target(unit, ch), Err: err}
	}
	return nil
}

// Disable implements Actuator.
func (r *Rig) Disable(_ context.Context, unit UnitName, ch Channel) error {
	d, err := r.drive(unit)
	if err == nil {
		err = d.Disable(ch)
	}
	if err != nil {
		return &IOError{Op: "disable", Target: target(unit, ch), Err: err}
	}
	return nil
}

// SetRotation implements Actuator.
func (r *Rig) SetRotation(_ context.Context, unit UnitName, ch Channel, rot Rotation) error {
	d, err := r.drive(unit)
	if err == nil {
		err = d.SetRotation(ch, rot)
	}
	if err != nil {
		return &IOError{Op: "set_rotation", Target: target(unit, ch), Err: err}
	}
	return nil
}

// Distance implements Rangefinder.
func (r *Rig) Distance(ctx context.Context, sensor SensorName) (float64, error) {
	s, ok := r.sonars[sensor]
	if !ok {
		return 0, &IOError{Op: "distance", Target: string(sensor), Err: errors.New("unknown sensor")}
	}
	cm, err := s.Distance(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return 0, err
		}
		return 0, &IOError{Op: "distance", Target: string(sensor), Err: err}
	}
	return cm, nil
}

// Close disables every motor and releases all pins.
func (r *Rig) Close() error {
	var errs []error
	for _, unit := range AllUnits() {
		for _, ch := range AllChannels() {
			if err := r.Disable(context.Background(), unit, ch); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := r.halt(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (r *Rig) halt() error {
	var errs []error
	for _, p := range r.pins {
		if err := p.Halt(); err != nil {
			r.log.Warn("halt pin", zap.String("pin", p.Name()), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
