package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thushan/runstatus/internal/config"
	"github.com/thushan/runstatus/internal/controller"
	"github.com/thushan/runstatus/internal/core/domain"
	"github.com/thushan/runstatus/internal/render"
	"github.com/thushan/runstatus/internal/tui"
	"github.com/thushan/runstatus/internal/util"
)

// ErrRefreshFailed marks a run where at least one resource could not be queried
var ErrRefreshFailed = errors.New("refresh failed")

// RunOnce refreshes every controller concurrently, renders them all, and
// reports an error if any of them failed. Results are rendered even then.
func (a *Application) RunOnce(ctx context.Context) error {
	refreshErr := a.refreshAll(ctx)

	snaps := make([]domain.Snapshot, len(a.controllers))
	for i, c := range a.controllers {
		snaps[i] = c.Snapshot()
	}
	if err := a.renderer.Render(a.out, snaps...); err != nil {
		return fmt.Errorf("rendering results: %w", err)
	}
	return refreshErr
}

// refreshAll waits for every controller, one failure doesn't cancel the rest
func (a *Application) refreshAll(ctx context.Context) error {
	var g errgroup.Group
	errs := make([]error, len(a.controllers))

	for i, c := range a.controllers {
		g.Go(func() error {
			if err := c.Refresh(ctx); err != nil {
				errs[i] = fmt.Errorf("%s: %w", c.Resource(), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	return nil
}

// Watch refreshes on every tick and renders each refresh as it lands.
// Changes to the config file are applied to the running controllers.
func (a *Application) Watch(ctx context.Context) error {
	events, unsubscribe := a.bus.Subscribe(ctx)
	defer unsubscribe()

	intervals := make(chan time.Duration, 1)
	if a.loader != nil && a.loader.Watch(func(cfg *config.Config, err error) {
		a.reload(ctx, cfg, err, intervals)
	}) {
		a.logger.Info("Watching config for changes", "file", a.loader.ConfigFileUsed())
	}

	interval := a.getConfig().Watch.Interval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.logger.InfoWithCount("Watching resources", len(a.controllers), "interval", interval)
	go func() { a.logRefreshError(a.refreshAll(ctx)) }()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			go func() { a.logRefreshError(a.refreshAll(ctx)) }()

		case d := <-intervals:
			ticker.Reset(d)
			a.logger.Info("Watch interval changed", "interval", d)

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Kind != controller.EventRefreshed && ev.Kind != controller.EventRefreshFailed {
				continue
			}
			if err := a.renderer.Render(a.out, ev.Snapshot); err != nil {
				a.logger.ErrorWithResource("Failed to render", ev.Snapshot.Resource, "error", err)
			}
		}
	}
}

func (a *Application) logRefreshError(err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Debug("Refresh round finished with errors", "error", err)
	}
}

// reload applies a re-read config file. Only the query and the watch
// interval can change at runtime, everything else needs a restart.
func (a *Application) reload(ctx context.Context, cfg *config.Config, err error, intervals chan<- time.Duration) {
	if err != nil {
		a.logger.Error("Failed to re-read config file", "error", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		a.logger.Error("Ignoring invalid config change", "error", err)
		return
	}

	prev := a.getConfig()
	a.setConfig(cfg)

	if cfg.Watch.Interval != prev.Watch.Interval {
		select {
		case intervals <- cfg.Watch.Interval:
		default:
		}
	}

	filter := cfg.InitialFilter()
	change := controller.Change{Limit: &filter.Limit, Filter: domain.PatchFrom(filter)}
	for _, c := range a.controllers {
		if err := c.Update(ctx, change); err != nil {
			a.logger.WarnWithResource("Config change did not apply cleanly to", c.Resource(), "error", err)
		}
	}
	a.logger.Info("Applied config change", "file", cfg.Filename)
}

// Interactive opens the terminal view on one resource, the first selected
// one unless name picks another
func (a *Application) Interactive(ctx context.Context, name string) error {
	ctrl := a.controllers[0]
	if name != "" {
		c, ok := a.Controller(name)
		if !ok {
			return fmt.Errorf("unknown resource %q", name)
		}
		ctrl = c
	}

	columns, err := render.ParseColumns(a.getConfig().Output.Columns)
	if err != nil {
		return err
	}

	width, height := util.TerminalSize()
	return tui.Run(ctx, ctrl, tui.Options{
		Now:     a.clock,
		Columns: columns,
		Width:   width,
		Height:  height,
	})
}
