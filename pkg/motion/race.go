package motion

import (
	"context"
	"errors"
	"time"

	"github.com/gwillem/mazerunner/pkg/maze"
	"github.com/gwillem/mazerunner/pkg/robot"
)

type detectorKind int

const (
	// below completes when a reading drops under the threshold.
	below detectorKind = iota
	// above completes when a reading rises over the threshold.
	above
	// crossing completes when a reading reaches the threshold from
	// whichever side the first reading was on.
	crossing
)

// detector decides, sample by sample, whether a participant is done.
type detector struct {
	kind      detectorKind
	threshold float64

	started   bool
	fromAbove bool
}

func (d *detector) done(cm float64) bool {
	switch d.kind {
	case below:
		return cm < d.threshold
	case above:
		return cm > d.threshold
	}
	if !d.started {
		d.started = true
		if cm == d.threshold {
			return true
		}
		d.fromAbove = cm > d.threshold
	}
	if d.fromAbove {
		return cm <= d.threshold
	}
	return cm >= d.threshold
}

// participant polls one sensor until its detector fires.
type participant struct {
	sensor robot.SensorName
	det    detector
}

// participants returns the race for heading h.
//
// A turn is done when either side sensor crosses the turn threshold. Straight
// travel is done when the leading sensor sees a wall or either side sensor
// sees an opening.
func participants(h maze.Heading, cal robot.Calibration) []participant {
	if h.Turning() {
		return []participant{
			{robot.Left, detector{kind: crossing, threshold: cal.TurnThreshold}},
			{robot.Right, detector{kind: crossing, threshold: cal.TurnThreshold}},
		}
	}
	primary := robot.Front
	if h == maze.Backward {
		primary = robot.Rear
	}
	return []participant{
		{primary, detector{kind: below, threshold: cal.WallThreshold}},
		{robot.Left, detector{kind: above, threshold: cal.OpeningThreshold}},
		{robot.Right, detector{kind: above, threshold: cal.OpeningThreshold}},
	}
}

type result struct {
	sample robot.Sample
	err    error
}

// race runs every participant concurrently and returns the first sample
// that satisfies its detector. Losers are cancelled through their context
// and never awaited.
func (e *Engine) race(ctx context.Context, idx int, cmd maze.Command, ps []participant) (robot.Sample, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so late participants never block after the race resolved.
	done := make(chan result, len(ps))
	for _, p := range ps {
		go e.poll(ctx, idx, cmd, p, done)
	}

	select {
	case r := <-done:
		return r.sample, r.err
	case <-ctx.Done():
		return robot.Sample{}, ctx.Err()
	}
}

func (e *Engine) poll(ctx context.Context, idx int, cmd maze.Command, p participant, done chan<- result) {
	det := p.det
	for {
		if err := ctx.Err(); err != nil {
			done <- result{err: err}
			return
		}
		cm, err := e.sensors.Distance(ctx, p.sensor)
		if ctx.Err() != nil {
			// The race was resolved or abandoned while we were reading.
			done <- result{err: ctx.Err()}
			return
		}
		if err != nil {
			var ioErr *robot.IOError
			if !errors.As(err, &ioErr) {
				err = &robot.IOError{Op: "distance", Target: string(p.sensor), Err: err}
			}
			e.metrics.ObserveIOError("distance")
			done <- result{err: err}
			return
		}

		s := robot.Sample{Sensor: p.sensor, Centimeters: cm}
		e.metrics.ObserveSample(string(p.sensor))
		e.sendEvent(Event{Index: idx, Command: cmd, Phase: PhaseRacing, Sample: &s})

		if det.done(cm) {
			done <- result{sample: s}
			return
		}
		if e.pollInterval > 0 {
			t := time.NewTimer(e.pollInterval)
			select {
			case <-ctx.Done():
				t.Stop()
			case <-t.C:
			}
		}
	}
}
