package app

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/thushan/runstatus/internal/adapter/statusapi"
	"github.com/thushan/runstatus/internal/config"
	"github.com/thushan/runstatus/internal/controller"
	"github.com/thushan/runstatus/internal/logger"
	"github.com/thushan/runstatus/internal/render"
	"github.com/thushan/runstatus/internal/util"
	"github.com/thushan/runstatus/pkg/eventbus"
	"github.com/thushan/runstatus/pkg/format"
)

const DefaultEventBuffer = 64

// Options are the process-level bits the application doesn't get from config
type Options struct {
	Out    io.Writer
	Loader *config.Loader
	Clock  func() time.Time
}

// Application wires one status client and one query controller per
// selected resource root
type Application struct {
	configMu    sync.RWMutex
	config      *config.Config
	out         io.Writer
	loader      *config.Loader
	clock       func() time.Time
	logger      *logger.StyledLogger
	bus         *eventbus.EventBus[controller.Event]
	renderer    *render.Renderer
	clients     []*statusapi.HTTPRunClient
	controllers []*controller.QueryController
	startTime   time.Time
}

// New creates a new application instance
func New(cfg *config.Config, opts Options, log *logger.StyledLogger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	resources, err := cfg.SelectedResources()
	if err != nil {
		return nil, err
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	width := 0
	if out == os.Stdout && util.IsTerminal() {
		width, _ = util.TerminalSize()
	}
	renderer, err := render.New(render.Options{
		Format:  cfg.Output.Format,
		Columns: cfg.Output.Columns,
		Width:   width,
		Now:     clock,
	})
	if err != nil {
		return nil, err
	}

	a := &Application{
		config:    cfg,
		out:       out,
		loader:    opts.Loader,
		clock:     clock,
		logger:    log,
		bus:       eventbus.NewWithBuffer[controller.Event](DefaultEventBuffer),
		renderer:  renderer,
		startTime: clock(),
	}

	for _, r := range resources {
		client := statusapi.NewHTTPRunClient(statusapi.Config{
			Name:              r.Name,
			BaseURL:           cfg.API.BaseURL,
			Root:              r.Root,
			APIUser:           cfg.API.User,
			APIKey:            cfg.API.Key,
			Timeout:           cfg.API.Timeout,
			RequestsPerSecond: cfg.API.RequestsPerSecond,
			Burst:             cfg.API.Burst,
		}, log)

		ctrl, err := controller.New(client, controller.Options{
			Clock:             clock,
			Bus:               a.bus,
			Resource:          r.Name,
			Initial:           cfg.InitialFilter(),
			DiscardSuperseded: cfg.Query.DiscardSuperseded,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", r.Name, err)
		}

		a.clients = append(a.clients, client)
		a.controllers = append(a.controllers, ctrl)
		log.DebugWithResource("Configured resource", r.Name, "url", client.CollectionURL())
	}

	log.InfoWithCount("Configured resources", len(a.controllers))
	return a, nil
}

func (a *Application) Controllers() []*controller.QueryController {
	return a.controllers
}

// Controller finds the controller for a resource by name
func (a *Application) Controller(name string) (*controller.QueryController, bool) {
	for _, c := range a.controllers {
		if c.Resource() == name {
			return c, true
		}
	}
	return nil, false
}

func (a *Application) getConfig() *config.Config {
	a.configMu.RLock()
	defer a.configMu.RUnlock()
	return a.config
}

func (a *Application) setConfig(cfg *config.Config) {
	a.configMu.Lock()
	a.config = cfg
	a.configMu.Unlock()
}

// Close shuts down the shared event bus and logs request statistics
func (a *Application) Close() {
	a.bus.Shutdown()
	a.reportClientStats()
}

func (a *Application) reportClientStats() {
	for _, c := range a.clients {
		m := c.GetMetrics()
		if m.TotalRequests == 0 {
			continue
		}
		a.logger.DebugWithResource("Request stats for", c.Resource(),
			"total", m.TotalRequests,
			"success_rate", format.Percentage(m.SuccessfulRequests, m.TotalRequests),
			"failed", m.FailedRequests,
			"not_found", m.NotFound,
			"avg_latency", format.Latency(m.AverageLatency),
			"last_request", format.TimeAgo(m.LastRequestTime, a.clock()),
		)
	}
	if stats := a.bus.Stats(); stats.TotalDropped > 0 {
		a.logger.Warn("Slow event subscribers missed updates", "dropped", stats.TotalDropped)
	}
	a.logger.Debug("Session finished", "uptime", a.clock().Sub(a.startTime).Round(time.Millisecond))
}
