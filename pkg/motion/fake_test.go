package motion

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gwillem/mazerunner/pkg/robot"
)

// journal is an ordered record of hardware calls shared by the fakes.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(format string, args ...any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

func (j *journal) snapshot() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

func (j *journal) count(entry string) int {
	n := 0
	for _, e := range j.snapshot() {
		if e == entry {
			n++
		}
	}
	return n
}

type fakeActuator struct {
	j    *journal
	fail map[string]error // keyed by "op unit/ch"
}

func (a *fakeActuator) call(op string, unit robot.UnitName, ch robot.Channel, extra string) error {
	key := fmt.Sprintf("%s %s/%s", op, unit, ch)
	if err, ok := a.fail[key]; ok {
		a.j.add("%s failed", key)
		return err
	}
	a.j.add("%s%s", key, extra)
	return nil
}

func (a *fakeActuator) Enable(_ context.Context, unit robot.UnitName, ch robot.Channel) error {
	return a.call("enable", unit, ch, "")
}

func (a *fakeActuator) Disable(_ context.Context, unit robot.UnitName, ch robot.Channel) error {
	return a.call("disable", unit, ch, "")
}

func (a *fakeActuator) SetRotation(_ context.Context, unit robot.UnitName, ch robot.Channel, r robot.Rotation) error {
	return a.call("rotate", unit, ch, " "+r.String())
}

// fakeSensors hands out readings pushed by the test. A read blocks until the
// test feeds a value or the context is done. Sensors listed in stubborn
// ignore cancellation, like a sonar stuck waiting for its echo.
type fakeSensors struct {
	j        *journal
	feeds    map[robot.SensorName]chan float64
	errs     map[robot.SensorName]error
	stubborn map[robot.SensorName]bool
	entered  chan robot.SensorName
	returned chan robot.SensorName
}

func newFakeSensors(j *journal) *fakeSensors {
	s := &fakeSensors{
		j:        j,
		feeds:    make(map[robot.SensorName]chan float64),
		errs:     make(map[robot.SensorName]error),
		stubborn: make(map[robot.SensorName]bool),
		entered:  make(chan robot.SensorName, 64),
		returned: make(chan robot.SensorName, 64),
	}
	for _, name := range robot.AllSensors() {
		s.feeds[name] = make(chan float64)
	}
	return s
}

func (s *fakeSensors) Distance(ctx context.Context, sensor robot.SensorName) (float64, error) {
	s.entered <- sensor
	defer func() { s.returned <- sensor }()
	if err, ok := s.errs[sensor]; ok {
		s.j.add("read %s failed", sensor)
		return 0, err
	}
	feed, ok := s.feeds[sensor]
	if !ok {
		return 0, errors.New("no such sensor")
	}
	if s.stubborn[sensor] {
		v := <-feed
		s.j.add("read %s %g", sensor, v)
		return v, nil
	}
	select {
	case v := <-feed:
		s.j.add("read %s %g", sensor, v)
		return v, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
