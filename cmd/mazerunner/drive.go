package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gwillem/mazerunner/pkg/maze"
	"github.com/gwillem/mazerunner/pkg/metrics"
	"github.com/gwillem/mazerunner/pkg/motion"
)

// DriveFlags are shared by the commands that execute a route.
type DriveFlags struct {
	TUI          bool          `long:"tui" description:"Show live sensor readings while driving"`
	MetricsAddr  string        `long:"metrics-addr" description:"Serve Prometheus metrics on this address, e.g. :9100"`
	PollInterval time.Duration `long:"poll-interval" default:"0s" description:"Pause between two readings of one sensor"`
}

type driveParams struct {
	flags    DriveFlags
	title    string
	engine   *motion.Engine
	commands []maze.Command
	registry *prometheus.Registry
	log      *zap.Logger
}

// drive runs the engine to completion next to the optional TUI and metrics
// server. Quitting the TUI aborts the run.
func drive(ctx context.Context, d driveParams) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if d.flags.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              d.flags.MetricsAddr,
			Handler:           metrics.HandlerFor(d.registry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			d.log.Info("serving metrics", zap.String("addr", d.flags.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	var p *tea.Program
	if d.flags.TUI {
		p = tea.NewProgram(newRunModel(d.title, d.engine, d.commands), tea.WithAltScreen())
		g.Go(func() error {
			go func() {
				<-gctx.Done()
				p.Quit()
			}()
			_, err := p.Run()
			// Leaving the TUI ends the run.
			cancel()
			if err != nil && gctx.Err() == nil {
				return fmt.Errorf("run TUI: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		err := d.engine.Run(gctx, d.commands)
		if p != nil {
			p.Send(runDoneMsg{err: err})
		} else {
			cancel()
		}
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if !d.flags.TUI {
		fmt.Println(successStyle.Render("Route complete."))
	}
	return nil
}
