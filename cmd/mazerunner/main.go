package main

import (
	"os"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Verbose []bool `short:"v" long:"verbose" description:"Verbose logging (repeat for debug)"`

	Plan  PlanCommand  `command:"plan" description:"Plan a route through a maze and print it"`
	Run   RunCommand   `command:"run" description:"Plan a route and drive it on the vehicle"`
	Sim   SimCommand   `command:"sim" description:"Plan a route and drive it on a simulated vehicle"`
	Setup SetupCommand `command:"setup" description:"Assign GPIO pins and write the wiring config"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "mazerunner - drive a sonar-guided vehicle through a known maze"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}

// newLogger builds the process logger from the -v count.
func newLogger() *zap.Logger {
	log, err := loggerConfig(len(opts.Verbose)).Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// loggerConfig returns the production config at warn level when verbose is
// zero, so only warnings and errors reach the terminal. Each -v switches to
// the development config and lowers the level by one step.
func loggerConfig(verbose int) zap.Config {
	if verbose == 0 {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		return cfg
	}
	cfg := zap.NewDevelopmentConfig()
	if verbose == 1 {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg
}
