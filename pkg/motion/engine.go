// Package motion executes planned commands on the vehicle. Each move drives
// the motors and then races sensor polling loops to decide when the next
// intersection has been reached.
package motion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gwillem/mazerunner/pkg/maze"
	"github.com/gwillem/mazerunner/pkg/metrics"
	"github.com/gwillem/mazerunner/pkg/robot"
)

// Phase is the state of the command being executed.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseActuating Phase = "actuating"
	PhaseRacing    Phase = "racing"
	PhaseCompleted Phase = "completed"
	PhaseDisabled  Phase = "disabled"
)

// Event reports progress of a command.
type Event struct {
	Index     int
	Command   maze.Command
	Phase     Phase
	Winner    robot.SensorName // set on PhaseCompleted
	Sample    *robot.Sample    // set on PhaseRacing and PhaseCompleted
	Err       error
	Timestamp time.Time
}

// Config holds the collaborators and tuning of an Engine.
type Config struct {
	Actuator robot.Actuator
	Sensors  robot.Rangefinder
	// Calibration defaults to robot.DefaultCalibration when zero.
	Calibration robot.Calibration
	// PollInterval is the pause between two readings of one sensor.
	PollInterval time.Duration
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
}

// Engine runs commands one at a time.
type Engine struct {
	act          robot.Actuator
	sensors      robot.Rangefinder
	cal          robot.Calibration
	pollInterval time.Duration
	zlog         *zap.Logger
	metrics      *metrics.Metrics

	mu      sync.Mutex
	running bool
	// engaged is true while any motor may be enabled.
	engaged bool

	eventMu sync.Mutex
	eventCh chan Event
	logCh   chan string
}

// New creates an engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Actuator == nil {
		return nil, errors.New("motion: actuator is required")
	}
	if cfg.Sensors == nil {
		return nil, errors.New("motion: sensors are required")
	}
	cal := cfg.Calibration
	if cal == (robot.Calibration{}) {
		cal = robot.DefaultCalibration()
	}
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	if cfg.PollInterval < 0 {
		return nil, fmt.Errorf("motion: negative poll interval %s", cfg.PollInterval)
	}
	zlog := cfg.Logger
	if zlog == nil {
		zlog = zap.NewNop()
	}

	return &Engine{
		act:          cfg.Actuator,
		sensors:      cfg.Sensors,
		cal:          cal,
		pollInterval: cfg.PollInterval,
		zlog:         zlog,
		metrics:      cfg.Metrics,
		eventCh:      make(chan Event, 16),
		logCh:        make(chan string, 32),
	}, nil
}

// Events returns a channel that receives progress events. When the reader
// falls behind the oldest pending event is dropped.
func (e *Engine) Events() <-chan Event {
	return e.eventCh
}

// Logs returns a channel that receives log messages.
func (e *Engine) Logs() <-chan string {
	return e.logCh
}

// Calibration returns the thresholds in use.
func (e *Engine) Calibration() robot.Calibration {
	return e.cal
}

func (e *Engine) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case e.logCh <- msg:
	default:
		// Drop if channel full
	}
}

func (e *Engine) sendEvent(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	e.eventMu.Lock()
	defer e.eventMu.Unlock()
	select {
	case e.eventCh <- ev:
	default:
		select {
		case <-e.eventCh:
		default:
		}
		e.eventCh <- ev
	}
}

// Run executes cmds in order and returns after the first Stop, after the
// last command or on the first failure. All motors are disabled when Run
// returns, including when ctx is cancelled mid-move.
func (e *Engine) Run(ctx context.Context, cmds []maze.Command) (err error) {
	if err := e.begin(); err != nil {
		return err
	}
	defer func() { err = e.end(ctx, err) }()

	e.log("Run started: %d commands", len(cmds))
	e.zlog.Info("run started", zap.Int("commands", len(cmds)))
	for i, cmd := range cmds {
		if err := e.step(ctx, i, cmd); err != nil {
			e.log("Run aborted at %s: %v", cmd, err)
			return fmt.Errorf("command %d (%s): %w", i, cmd, err)
		}
		if cmd.IsStop() {
			break
		}
	}
	e.log("Run finished")
	e.zlog.Info("run finished")
	return nil
}

// Execute runs a single command. Motors are disabled on failure.
func (e *Engine) Execute(ctx context.Context, cmd maze.Command) (err error) {
	if err := e.begin(); err != nil {
		return err
	}
	defer func() { err = e.end(ctx, err) }()
	return e.step(ctx, 0, cmd)
}

func (e *Engine) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return fmt.Errorf("already running")
	}
	e.running = true
	return nil
}

func (e *Engine) end(ctx context.Context, err error) error {
	e.mu.Lock()
	engaged := e.engaged
	e.mu.Unlock()
	if engaged {
		if derr := e.disableAll(ctx); derr != nil {
			e.zlog.Error("teardown failed, motors may still be running", zap.Error(derr))
			err = errors.Join(err, derr)
		}
	}
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
	return err
}

func (e *Engine) step(ctx context.Context, idx int, cmd maze.Command) error {
	start := time.Now()
	h, ok := cmd.Heading()
	if !ok {
		err := e.disableAll(ctx)
		e.sendEvent(Event{Index: idx, Command: cmd, Phase: PhaseDisabled, Err: err})
		e.metrics.ObserveMove("Stop", "", time.Since(start), err)
		e.log("Stop: motors disabled")
		return err
	}

	e.sendEvent(Event{Index: idx, Command: cmd, Phase: PhaseActuating})
	if err := e.actuate(ctx, h); err != nil {
		return e.abort(ctx, idx, cmd, start, err)
	}

	e.sendEvent(Event{Index: idx, Command: cmd, Phase: PhaseRacing})
	win, err := e.race(ctx, idx, cmd, participants(h, e.cal))
	if err != nil {
		return e.abort(ctx, idx, cmd, start, err)
	}

	if err := e.disableAll(ctx); err != nil {
		return e.abort(ctx, idx, cmd, start, err)
	}
	e.sendEvent(Event{Index: idx, Command: cmd, Phase: PhaseCompleted, Winner: win.Sensor, Sample: &win})
	e.metrics.ObserveMove(h.String(), string(win.Sensor), time.Since(start), nil)
	e.log("%s done: %s at %.1f cm", cmd, win.Sensor, win.Centimeters)
	e.zlog.Debug("move completed",
		zap.Int("index", idx),
		zap.Stringer("command", cmd),
		zap.String("winner", string(win.Sensor)),
		zap.Float64("cm", win.Centimeters),
		zap.Duration("took", time.Since(start)))
	return nil
}

func (e *Engine) abort(ctx context.Context, idx int, cmd maze.Command, start time.Time, err error) error {
	if derr := e.disableAll(ctx); derr != nil {
		err = errors.Join(err, derr)
	}
	h, _ := cmd.Heading()
	e.sendEvent(Event{Index: idx, Command: cmd, Phase: PhaseDisabled, Err: err})
	e.metrics.ObserveMove(h.String(), "", time.Since(start), err)
	e.zlog.Warn("move aborted", zap.Int("index", idx), zap.Stringer("command", cmd), zap.Error(err))
	return err
}

// rotations maps a heading to the rotation of each channel. Both units get
// the same setting.
func rotations(h maze.Heading) map[robot.Channel]robot.Rotation {
	switch h {
	case maze.Backward:
		return map[robot.Channel]robot.Rotation{robot.ChannelA: robot.Reverse, robot.ChannelB: robot.Reverse}
	case maze.Left:
		return map[robot.Channel]robot.Rotation{robot.ChannelA: robot.Reverse, robot.ChannelB: robot.Forward}
	case maze.Right:
		return map[robot.Channel]robot.Rotation{robot.ChannelA: robot.Forward, robot.ChannelB: robot.Reverse}
	default:
		return map[robot.Channel]robot.Rotation{robot.ChannelA: robot.Forward, robot.ChannelB: robot.Forward}
	}
}

func (e *Engine) actuate(ctx context.Context, h maze.Heading) error {
	rot := rotations(h)
	for _, unit := range robot.AllUnits() {
		for _, ch := range robot.AllChannels() {
			if err := e.act.SetRotation(ctx, unit, ch, rot[ch]); err != nil {
				return e.ioError("set_rotation", unit, ch, err)
			}
		}
	}

	e.mu.Lock()
	e.engaged = true
	e.mu.Unlock()
	for _, unit := range robot.AllUnits() {
		for _, ch := range robot.AllChannels() {
			if err := e.act.Enable(ctx, unit, ch); err != nil {
				return e.ioError("enable", unit, ch, err)
			}
		}
	}
	return nil
}

// disableAll tries every channel even when one fails. It ignores
// cancellation of ctx so motors are stopped on every exit path.
func (e *Engine) disableAll(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for _, unit := range robot.AllUnits() {
		for _, ch := range robot.AllChannels() {
			if err := e.act.Disable(ctx, unit, ch); err != nil {
				errs = append(errs, e.ioError("disable", unit, ch, err))
			}
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	e.mu.Lock()
	e.engaged = false
	e.mu.Unlock()
	return nil
}

func (e *Engine) ioError(op string, unit robot.UnitName, ch robot.Channel, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	e.metrics.ObserveIOError(op)
	var ioErr *robot.IOError
	if errors.As(err, &ioErr) {
		return err
	}
	return &robot.IOError{Op: op, Target: string(unit) + "/" + string(ch), Err: err}
}
