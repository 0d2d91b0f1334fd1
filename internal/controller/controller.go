// Package controller holds the query controller: the filter state for one
// status resource, the request derived from it, and the latest results.
package controller

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/thushan/runstatus/internal/core/domain"
	"github.com/thushan/runstatus/internal/core/ports"
	"github.com/thushan/runstatus/internal/logger"
	"github.com/thushan/runstatus/pkg/eventbus"
)

// Options configures a QueryController
type Options struct {
	Clock    func() time.Time
	Bus      *eventbus.EventBus[Event]
	Resource string
	Initial  domain.FilterState
	// DiscardSuperseded drops a response if a later refresh has already
	// been applied. Off by default: the last response to complete wins,
	// even if it answers an older filter.
	DiscardSuperseded bool
}

// Change is one atomic update. Whatever it changes, it costs at most one
// refresh.
type Change struct {
	Limit  *int
	Filter domain.FilterPatch
}

// QueryController owns a FilterState and re-queries its RunSource on every
// change to it
type QueryController struct {
	source            ports.RunSource
	bus               *eventbus.EventBus[Event]
	logger            *logger.StyledLogger
	clock             func() time.Time
	resource          string
	ownsBus           bool
	discardSuperseded bool

	mu          sync.Mutex
	refreshedAt time.Time
	lastErr     error
	filter      domain.FilterState
	result      domain.ResultSet
	issued      uint64
	applied     uint64
}

func New(source ports.RunSource, opts Options, log *logger.StyledLogger) (*QueryController, error) {
	if source == nil {
		return nil, errors.New("controller: nil run source")
	}

	initial := opts.Initial
	if initial.Limit == 0 {
		initial.Limit = domain.DefaultLimit
	}
	if err := initial.Validate(); err != nil {
		return nil, fmt.Errorf("controller: initial filter: %w", err)
	}

	c := &QueryController{
		source:            source,
		bus:               opts.Bus,
		logger:            log,
		clock:             opts.Clock,
		resource:          opts.Resource,
		discardSuperseded: opts.DiscardSuperseded,
		filter:            initial,
	}
	if c.resource == "" {
		c.resource = source.Resource()
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.bus == nil {
		c.bus = eventbus.New[Event]()
		c.ownsBus = true
	}
	if c.logger == nil {
		c.logger = logger.NewDiscard()
	}

	return c, nil
}

func (c *QueryController) Resource() string {
	return c.resource
}

// SetFilter merges patch into the filter. If anything changed, exactly one
// refresh runs and its error is returned.
func (c *QueryController) SetFilter(ctx context.Context, patch domain.FilterPatch) error {
	return c.Update(ctx, Change{Filter: patch})
}

// SetLimit changes the result cap, refreshing if it changed
func (c *QueryController) SetLimit(ctx context.Context, n int) error {
	return c.Update(ctx, Change{Limit: &n})
}

// Update applies ch atomically. A change that leaves the state as it was
// does not refresh.
func (c *QueryController) Update(ctx context.Context, ch Change) error {
	c.mu.Lock()
	next, filterChanged := c.filter.Apply(ch.Filter)

	limitChanged := false
	if ch.Limit != nil {
		var err error
		next, limitChanged, err = next.WithLimit(*ch.Limit)
		if err != nil {
			c.mu.Unlock()
			return err
		}
	}

	if !filterChanged && !limitChanged {
		c.mu.Unlock()
		return nil
	}

	c.filter = next
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if filterChanged {
		c.publish(EventFilterChanged, snap)
	}
	if limitChanged {
		c.publish(EventLimitChanged, snap)
	}

	return c.Refresh(ctx)
}

// Refresh re-issues the query for the current filter. RefreshedAt moves
// first, so a view can show when it last tried even if the call fails.
// A transport failure is returned untouched and the previous results stay.
func (c *QueryController) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.refreshedAt = c.clock()
	c.issued++
	gen := c.issued
	filter := c.filter
	c.mu.Unlock()

	rs, err := c.fetch(ctx, filter)

	c.mu.Lock()
	if c.discardSuperseded && gen < c.applied {
		c.mu.Unlock()
		c.logger.DebugWithResource("Discarding superseded response for", c.resource, "generation", gen)
		return err
	}
	c.applied = max(c.applied, gen)

	if err != nil {
		c.lastErr = err
		snap := c.snapshotLocked()
		c.mu.Unlock()

		c.logger.WarnWithResource("Refresh failed for", c.resource, "error", err)
		c.publish(EventRefreshFailed, snap)
		return err
	}

	c.result = rs
	c.lastErr = nil
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.DebugWithResource("Refreshed", c.resource, "runs", len(rs.Runs), "total", rs.TotalCount, "direct", filter.IsDirectLookup())
	c.publish(EventRefreshed, snap)
	return nil
}

func (c *QueryController) fetch(ctx context.Context, filter domain.FilterState) (domain.ResultSet, error) {
	if filter.IsDirectLookup() {
		run, err := c.source.GetRun(ctx, filter.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ResultSet{Runs: []domain.ModelRun{}}, nil
			}
			return domain.ResultSet{}, err
		}
		return domain.ResultSet{Runs: []domain.ModelRun{run}, TotalCount: 1}, nil
	}

	rs, err := c.source.ListRuns(ctx, ports.ListQuery{
		Limit:         filter.Limit,
		DataProvider:  filter.DataProvider,
		ReferenceTime: filter.ReferenceTime,
	})
	if err != nil {
		return domain.ResultSet{}, err
	}
	return rs.Capped(filter.Limit), nil
}

// Snapshot returns a copy of the view-facing state
func (c *QueryController) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Filter returns the current filter state
func (c *QueryController) Filter() domain.FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Subscribe streams state change events until ctx ends or cleanup is called
func (c *QueryController) Subscribe(ctx context.Context) (<-chan Event, func()) {
	return c.bus.Subscribe(ctx)
}

// Close releases the event bus if the controller created it
func (c *QueryController) Close() {
	if c.ownsBus {
		c.bus.Shutdown()
	}
}

func (c *QueryController) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		Resource:    c.resource,
		Filter:      c.filter,
		Runs:        slices.Clone(c.result.Runs),
		TotalCount:  c.result.TotalCount,
		RefreshedAt: c.refreshedAt,
		Err:         c.lastErr,
		Generation:  c.applied,
	}
}

func (c *QueryController) publish(kind EventKind, snap domain.Snapshot) {
	c.bus.Publish(Event{Kind: kind, Snapshot: snap})
}
