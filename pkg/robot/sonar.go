package robot

import (
	"context"
	"errors"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
)

const (
	// SpeedOfSound in centimeters per second.
	SpeedOfSound = 34300.0

	triggerPulse = 10 * time.Microsecond

	// DefaultEchoTimeout bounds the wait for each echo edge. Sound covers
	// the sensor's 4m range and back in about 24ms.
	DefaultEchoTimeout = 60 * time.Millisecond
)

// ErrEchoTimeout is returned when the echo line does not change in time.
var ErrEchoTimeout = errors.New("echo timeout")

// Sonar is an HC-SR04 style ultrasonic rangefinder: a pulse on trigger
// makes the sensor raise echo for as long as the sound takes to return.
type Sonar struct {
	trigger gpio.PinOut
	echo    gpio.PinIn
	timeout time.Duration

	mu sync.Mutex
}

// NewSonar sets up echo for edge detection. Pass 0 as timeout to use
// DefaultEchoTimeout.
func NewSonar(trigger gpio.PinOut, echo gpio.PinIn, timeout time.Duration) (*Sonar, error) {
	if timeout <= 0 {
		timeout = DefaultEchoTimeout
	}
	if err := trigger.Out(gpio.Low); err != nil {
		return nil, err
	}
	if err := echo.In(gpio.PullDown, gpio.BothEdges); err != nil {
		return nil, err
	}
	return &Sonar{trigger: trigger, echo: echo, timeout: timeout}, nil
}

// Distance triggers one measurement and returns the distance in centimeters.
func (s *Sonar) Distance(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.trigger.Out(gpio.High); err != nil {
		return 0, err
	}
	time.Sleep(triggerPulse)
	if err := s.trigger.Out(gpio.Low); err != nil {
		return 0, err
	}

	if !s.waitFor(gpio.High) {
		return 0, ErrEchoTimeout
	}
	start := time.Now()
	if !s.waitFor(gpio.Low) {
		return 0, ErrEchoTimeout
	}
	travel := time.Since(start).Seconds() / 2
	return travel * SpeedOfSound, nil
}

func (s *Sonar) waitFor(l gpio.Level) bool {
	deadline := time.Now().Add(s.timeout)
	for s.echo.Read() != l {
		remaining := time.Until(deadline)
		if remaining <= 0 || !s.echo.WaitForEdge(remaining) {
			return s.echo.Read() == l
		}
	}
	return true
}
