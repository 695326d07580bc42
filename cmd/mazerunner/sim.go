package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gwillem/mazerunner/pkg/metrics"
	"github.com/gwillem/mazerunner/pkg/motion"
	"github.com/gwillem/mazerunner/pkg/robot"
	"github.com/gwillem/mazerunner/pkg/sim"
)

type SimCommand struct {
	Latency     time.Duration `long:"latency" default:"20ms" description:"Simulated duration of one sensor reading"`
	FailAfter   int           `long:"fail-after" description:"Fail every sensor reading after this many (0 never fails)"`
	Calibration string        `long:"calibration" description:"Threshold calibration file"`
	DriveFlags
	Args MapArgs `positional-args:"yes"`
}

func (c *SimCommand) Execute(args []string) error {
	log := newLogger()
	defer log.Sync()

	cal := robot.DefaultCalibration()
	if c.Calibration != "" {
		var err error
		if cal, err = robot.LoadCalibration(c.Calibration); err != nil {
			return err
		}
	}

	reg, mt := metrics.NewRegistry()
	m, p, err := loadPlan(c.Args.Map, log, mt)
	if err != nil {
		return err
	}
	printPlan(m, p)

	vehicle := sim.New(sim.Options{
		Latency:   c.Latency,
		FailAfter: c.FailAfter,
		Logger:    log,
	})
	engine, err := motion.New(motion.Config{
		Actuator:     vehicle,
		Sensors:      vehicle,
		Calibration:  cal,
		PollInterval: c.PollInterval,
		Logger:       log,
		Metrics:      mt,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return drive(ctx, driveParams{
		flags:    c.DriveFlags,
		title:    "mazerunner sim",
		engine:   engine,
		commands: p.Commands(),
		registry: reg,
		log:      log,
	})
}
