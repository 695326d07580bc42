package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/gwillem/mazerunner/pkg/metrics"
	"github.com/gwillem/mazerunner/pkg/motion"
	"github.com/gwillem/mazerunner/pkg/robot"
)

type RunCommand struct {
	Config      string `long:"config" default:"mazerunner.json" description:"Wiring config file"`
	Calibration string `long:"calibration" description:"Threshold calibration file (overrides the config)"`
	DriveFlags
	Args MapArgs `positional-args:"yes"`
}

func (c *RunCommand) Execute(args []string) error {
	log := newLogger()
	defer log.Sync()

	cfg, err := robot.LoadConfigFrom(c.Config)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(os.Stderr, "No configuration found. Run 'mazerunner setup' first.")
		}
		return err
	}
	cal := cfg.Thresholds()
	if c.Calibration != "" {
		if cal, err = robot.LoadCalibration(c.Calibration); err != nil {
			return err
		}
	}
	fmt.Printf("Loaded configuration from %s\n", c.Config)

	reg, mt := metrics.NewRegistry()
	m, p, err := loadPlan(c.Args.Map, log, mt)
	if err != nil {
		return err
	}
	printPlan(m, p)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rig, err := robot.Open(ctx, cfg, robot.Options{Logger: log})
	if err != nil {
		return fmt.Errorf("open vehicle: %w", err)
	}
	defer func() {
		if err := rig.Close(); err != nil {
			log.Error("close vehicle", zap.Error(err))
		}
	}()

	engine, err := motion.New(motion.Config{
		Actuator:     rig,
		Sensors:      rig,
		Calibration:  cal,
		PollInterval: c.PollInterval,
		Logger:       log,
		Metrics:      mt,
	})
	if err != nil {
		return err
	}

	return drive(ctx, driveParams{
		flags:    c.DriveFlags,
		title:    "mazerunner run",
		engine:   engine,
		commands: p.Commands(),
		registry: reg,
		log:      log,
	})
}
