package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"snafu-upgrade/internal/buildpipeline"
	"snafu-upgrade/internal/driver"
	"snafu-upgrade/internal/ui"
)

var errInterrupted = errors.New("interrupted")

// runWithUI runs the loop and the progress view side by side. Quitting the
// view cancels the run.
func runWithUI(ctx context.Context, cfg driver.Config, checker driver.Checker, opts driver.Options) (*driver.Result, error) {
	events := make(chan buildpipeline.Event, 256)
	opts.Progress = buildpipeline.ChannelSink{Ch: events}

	var res *driver.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(events)
		var err error
		res, err = driver.Run(gctx, cfg, checker, opts)
		return err
	})
	g.Go(func() error {
		model := ui.NewProgressModel(appName, events)
		program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
		final, err := program.Run()
		if err != nil || ui.Interrupted(final) {
			// keep the loop from blocking on a view that is gone
			go func() {
				for range events {
				}
			}()
		}
		if err != nil {
			return fmt.Errorf("progress view: %w", err)
		}
		if ui.Interrupted(final) {
			return errInterrupted
		}
		return nil
	})

	err := g.Wait()
	return res, err
}
