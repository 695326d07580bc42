package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/mazerunner/pkg/maze"
	"github.com/gwillem/mazerunner/pkg/motion"
	"github.com/gwillem/mazerunner/pkg/plan"
	"github.com/gwillem/mazerunner/pkg/robot"
)

func scenarioCommands(t *testing.T) []maze.Command {
	t.Helper()
	m, err := maze.NewMap(
		[]bool{false, false, false, false, false, true},
		[]maze.Edge{
			{From: 0, To: 1, Heading: maze.Forward},
			{From: 1, To: 2, Heading: maze.Left},
			{From: 2, To: 3, Heading: maze.Left},
			{From: 3, To: 4, Heading: maze.Right},
			{From: 3, To: 5, Heading: maze.Forward},
		},
	)
	require.NoError(t, err)
	p, err := plan.Plan(m)
	require.NoError(t, err)
	return p.Commands()
}

func newEngine(t *testing.T, v *Vehicle) *motion.Engine {
	t.Helper()
	e, err := motion.New(motion.Config{Actuator: v, Sensors: v})
	require.NoError(t, err)
	return e
}

func TestRunScenario(t *testing.T) {
	v := New(Options{})
	e := newEngine(t, v)

	require.NoError(t, e.Run(context.Background(), scenarioCommands(t)))

	assert.Equal(t, []Motion{Ahead, TurnLeft, Ahead, TurnLeft, Ahead, Ahead}, v.History())
	assert.Equal(t, Parked, v.Motion())
	assert.False(t, v.Engaged())
}

func TestReadings(t *testing.T) {
	v := New(Options{})
	ctx := context.Background()

	cm, err := v.Distance(ctx, robot.Left)
	require.NoError(t, err)
	assert.Equal(t, 20.0, cm)

	for _, unit := range robot.AllUnits() {
		require.NoError(t, v.SetRotation(ctx, unit, robot.ChannelA, robot.Forward))
		require.NoError(t, v.SetRotation(ctx, unit, robot.ChannelB, robot.Reverse))
		require.NoError(t, v.Enable(ctx, unit, robot.ChannelA))
		require.NoError(t, v.Enable(ctx, unit, robot.ChannelB))
	}
	assert.Equal(t, TurnRight, v.Motion())

	var last float64
	for range 3 {
		last, err = v.Distance(ctx, robot.Right)
		require.NoError(t, err)
	}
	assert.Equal(t, 26.0, last)

	cm, err = v.Distance(ctx, robot.Front)
	require.NoError(t, err)
	assert.Equal(t, 100.0, cm)

	require.NoError(t, v.Disable(ctx, robot.RearUnit, robot.ChannelB))
	assert.Equal(t, Parked, v.Motion())
	assert.True(t, v.Engaged())

	_, err = v.Distance(ctx, robot.SensorName("up"))
	var ioErr *robot.IOError
	require.True(t, errors.As(err, &ioErr))

	err = v.Enable(ctx, robot.UnitName("middle"), robot.ChannelA)
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "enable", ioErr.Op)
}

func TestInjectedFaultAbortsRun(t *testing.T) {
	v := New(Options{FailAfter: 5})
	e := newEngine(t, v)

	err := e.Run(context.Background(), scenarioCommands(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInjected))
	var ioErr *robot.IOError
	assert.True(t, errors.As(err, &ioErr))
	assert.False(t, v.Engaged(), "motors must be disabled after a fault")
}

func TestLatencyHonorsContext(t *testing.T) {
	v := New(Options{Latency: time.Hour})
	e := newEngine(t, v)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := e.Run(ctx, scenarioCommands(t))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, v.Engaged())
}
