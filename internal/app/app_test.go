package app

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/thushan/runstatus/internal/config"
	"github.com/thushan/runstatus/internal/controller"
	"github.com/thushan/runstatus/internal/logger"
	"github.com/thushan/runstatus/theme"
)

// statusServer fakes both resource roots of a status service
type statusServer struct {
	mu        sync.Mutex
	queries   []string
	failRoot  string
	slowRoot  string
	slowUntil chan struct{}
}

func (s *statusServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.queries = append(s.queries, r.URL.Path+"?"+r.URL.RawQuery)
	fail := s.failRoot != "" && strings.HasPrefix(r.URL.Path, s.failRoot)
	slow := s.slowRoot != "" && strings.HasPrefix(r.URL.Path, s.slowRoot)
	s.mu.Unlock()

	if slow {
		select {
		case <-s.slowUntil:
		case <-r.Context().Done():
			return
		}
	}

	if fail {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "/model_run/7"):
		_, _ = w.Write([]byte(`{"id":7,"reference_time":"2016-01-01T00:00:00Z","model":"arome"}`))
	case strings.HasSuffix(r.URL.Path, "/model_run"):
		_, _ = w.Write([]byte(`{"meta":{"total_count":3141},"objects":[` +
			`{"id":1,"reference_time":"2016-01-01T00:00:00Z","model":"arome"},` +
			`{"id":2,"reference_time":"2016-01-01T06:00:00Z","model":"arome"}]}`))
	default:
		http.NotFound(w, r)
	}
}

func (s *statusServer) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func testConfig(baseURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = baseURL
	cfg.API.Timeout = 2 * time.Second
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, opts Options) (*Application, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	if opts.Out == nil {
		opts.Out = &out
	}
	a, err := New(cfg, opts, logger.NewDiscard())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a, &out
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.Format = "xml"
	_, err := New(cfg, Options{}, logger.NewDiscard())
	assert.ErrorContains(t, err, "invalid configuration")

	cfg = config.DefaultConfig()
	cfg.Query.Resources = []string{"nope"}
	_, err = New(cfg, Options{}, logger.NewDiscard())
	assert.ErrorContains(t, err, "nope")
}

func TestNew_OneControllerPerResource(t *testing.T) {
	a, _ := newTestApp(t, testConfig("http://status.invalid"), Options{})

	require.Len(t, a.Controllers(), 2)
	_, ok := a.Controller(config.ProductStatusName)
	assert.True(t, ok)
	_, ok = a.Controller("weatherstatus")
	assert.False(t, ok)
}

func TestRunOnce_ListsEveryResource(t *testing.T) {
	srv := &statusServer{}
	server := httptest.NewServer(srv)
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Output.Format = config.FormatJSON
	cfg.Query.DataProvider = "arome_metcoop_2500m"
	cfg.Query.Limit = 2

	a, out := newTestApp(t, cfg, Options{})
	require.NoError(t, a.RunOnce(context.Background()))

	assert.ElementsMatch(t, []string{
		config.ModelStatusRoot + "?limit=2&data_provider=arome_metcoop_2500m&reference_time=",
		config.ProductStatusRoot + "?limit=2&data_provider=arome_metcoop_2500m&reference_time=",
	}, srv.recorded())

	var resources []string
	dec := json.NewDecoder(out)
	for dec.More() {
		var doc map[string]any
		require.NoError(t, dec.Decode(&doc))
		raw, err := json.Marshal(doc)
		require.NoError(t, err)
		d := gjson.ParseBytes(raw)
		resources = append(resources, d.Get("resource").String())
		assert.Equal(t, int64(3141), d.Get("total_count").Int())
		assert.Equal(t, int64(2), d.Get("runs.#").Int())
	}
	assert.Equal(t, []string{config.ModelStatusName, config.ProductStatusName}, resources)
}

func TestRunOnce_DirectLookup(t *testing.T) {
	srv := &statusServer{}
	server := httptest.NewServer(srv)
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Query.ID = "7"
	cfg.Query.DataProvider = "ignored"
	cfg.Query.Resources = []string{config.ModelStatusName}
	cfg.Output.Format = config.FormatYAML

	a, out := newTestApp(t, cfg, Options{})
	require.NoError(t, a.RunOnce(context.Background()))

	assert.Equal(t, []string{config.ModelStatusRoot + "/7?"}, srv.recorded())
	assert.Contains(t, out.String(), "resource: modelstatus")
	assert.Contains(t, out.String(), "model: arome")
}

func TestRunOnce_PartialFailure(t *testing.T) {
	srv := &statusServer{failRoot: "/productstatus"}
	server := httptest.NewServer(srv)
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Output.Format = config.FormatJSON

	a, out := newTestApp(t, cfg, Options{})
	err := a.RunOnce(context.Background())

	require.ErrorIs(t, err, ErrRefreshFailed)
	assert.Contains(t, err.Error(), config.ProductStatusName)
	assert.NotContains(t, err.Error(), config.ModelStatusName+":")

	// the healthy resource still renders
	assert.Contains(t, out.String(), `"resource": "modelstatus"`)
	assert.Contains(t, out.String(), `"error":`)
}

func TestWatch_RendersEachRefresh(t *testing.T) {
	srv := &statusServer{}
	server := httptest.NewServer(srv)
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Query.Resources = []string{config.ModelStatusName}
	cfg.Output.Format = config.FormatJSON
	cfg.Watch.Interval = 20 * time.Millisecond

	out := &syncBuffer{}
	a, _ := newTestApp(t, cfg, Options{Out: out})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx) }()

	assert.Eventually(t, func() bool {
		return strings.Count(out.String(), `"resource": "modelstatus"`) >= 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatch_RendersFastResourceWithoutWaitingForSlowOne(t *testing.T) {
	srv := &statusServer{slowRoot: "/productstatus", slowUntil: make(chan struct{})}
	server := httptest.NewServer(srv)
	defer server.Close()
	release := sync.OnceFunc(func() { close(srv.slowUntil) })
	defer release()

	cfg := testConfig(server.URL)
	cfg.Output.Format = config.FormatJSON
	cfg.Watch.Interval = time.Hour

	out := &syncBuffer{}
	a, _ := newTestApp(t, cfg, Options{Out: out})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = a.Watch(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), `"resource": "modelstatus"`)
	}, 2*time.Second, 10*time.Millisecond)
	assert.NotContains(t, out.String(), `"resource": "productstatus"`)

	release()
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), `"resource": "productstatus"`)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatch_AppliesConfigChanges(t *testing.T) {
	srv := &statusServer{}
	server := httptest.NewServer(srv)
	defer server.Close()

	path := filepath.Join(t.TempDir(), "runstatus.yaml")
	write := func(provider string) {
		body := "api:\n  base_url: " + server.URL + "\n" +
			"resources:\n  - name: modelstatus\n    root: " + config.ModelStatusRoot + "\n" +
			"query:\n  data_provider: " + provider + "\n" +
			"output:\n  format: json\n" +
			"watch:\n  interval: 1h\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}
	write("first")

	cfg, loader, err := config.Load(config.LoadOptions{ConfigFile: path})
	require.NoError(t, err)

	a, _ := newTestApp(t, cfg, Options{Out: &syncBuffer{}, Loader: loader})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = a.Watch(ctx) }()

	hasQuery := func(provider string) func() bool {
		return func() bool {
			for _, q := range srv.recorded() {
				if strings.Contains(q, "data_provider="+provider) {
					return true
				}
			}
			return false
		}
	}
	require.Eventually(t, hasQuery("first"), 2*time.Second, 10*time.Millisecond)

	write("second")
	assert.Eventually(t, hasQuery("second"), 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, "second", a.getConfig().Query.DataProvider)
}

func TestReload_IgnoresInvalidConfig(t *testing.T) {
	a, _ := newTestApp(t, testConfig("http://status.invalid"), Options{})
	prev := a.getConfig()

	bad := config.DefaultConfig()
	bad.Query.Limit = -1
	a.reload(context.Background(), bad, nil, make(chan time.Duration, 1))

	assert.Same(t, prev, a.getConfig())
}

func TestClose_LogsDroppedEvents(t *testing.T) {
	var logs bytes.Buffer
	log := logger.NewStyledLogger(slog.New(slog.NewJSONHandler(&logs, nil)), theme.Default())

	a, err := New(testConfig("http://status.invalid"), Options{Out: &bytes.Buffer{}}, log)
	require.NoError(t, err)

	_, unsubscribe := a.bus.Subscribe(context.Background())
	for range DefaultEventBuffer + 3 {
		a.bus.Publish(controller.Event{Kind: controller.EventRefreshed})
	}
	unsubscribe()
	a.Close()

	assert.Contains(t, logs.String(), "Slow event subscribers missed updates")
	assert.Contains(t, logs.String(), `"dropped":3`)
}

func TestInteractive_UnknownResource(t *testing.T) {
	a, _ := newTestApp(t, testConfig("http://status.invalid"), Options{})
	err := a.Interactive(context.Background(), "weatherstatus")
	assert.ErrorContains(t, err, "weatherstatus")
}

// syncBuffer lets the watch loop write while the test reads
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
