package statusapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/thushan/runstatus/internal/core/domain"
	"github.com/thushan/runstatus/internal/core/ports"
	"github.com/thushan/runstatus/internal/logger"
	"github.com/thushan/runstatus/internal/util"
	"github.com/thushan/runstatus/internal/version"
)

const (
	DefaultTimeout     = 30 * time.Second
	MaxResponseSize    = 10 * 1024 * 1024 // 10MB limit for list responses
	DefaultContentType = "application/json"
	HeaderRequestID    = "X-Request-ID"

	DefaultMaxIdleConnections        = 10
	DefaultIdleConnTimeout           = 60 * time.Second
	DefaultMaxIdleConnectionsPerHost = 5

	OperationGetRun   = "get_run"
	OperationListRuns = "list_runs"
)

// HTTPRunClient talks to one resource root of a status service
type HTTPRunClient struct {
	httpClient    *http.Client
	limiter       *rate.Limiter
	logger        *logger.StyledLogger
	cfg           Config
	collectionURL string
	metrics       Metrics
	mu            sync.Mutex
}

var _ ports.RunSource = (*HTTPRunClient)(nil)

func NewHTTPRunClient(cfg Config, logger *logger.StyledLogger) *HTTPRunClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}

	return &HTTPRunClient{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        DefaultMaxIdleConnections,
				IdleConnTimeout:     DefaultIdleConnTimeout,
				MaxIdleConnsPerHost: DefaultMaxIdleConnectionsPerHost,
			},
		},
		limiter:       rate.NewLimiter(limit, burst),
		logger:        logger,
		cfg:           cfg,
		collectionURL: util.ResolveURLPath(cfg.BaseURL, cfg.Root),
	}
}

func (c *HTTPRunClient) Resource() string {
	return c.cfg.Name
}

// CollectionURL is the list endpoint this client queries
func (c *HTTPRunClient) CollectionURL() string {
	return c.collectionURL
}

// GetRun fetches one record by id. A 404 is returned as a RequestError
// wrapping ErrNotFound.
func (c *HTTPRunClient) GetRun(ctx context.Context, id string) (domain.ModelRun, error) {
	target := util.ResourceItemURL(c.collectionURL, id)

	body, err := c.get(ctx, OperationGetRun, target)
	if err != nil {
		return domain.ModelRun{}, err
	}

	run, err := ParseRun(body)
	if err != nil {
		c.recordFailure()
		return domain.ModelRun{}, newRequestError(c.cfg.Name, OperationGetRun, target, http.StatusOK, 0, err)
	}
	return run, nil
}

// ListRuns queries the collection. Parameters are sent in a fixed order and
// empty values are kept, the services treat "data_provider=" as no filter.
func (c *HTTPRunClient) ListRuns(ctx context.Context, q ports.ListQuery) (domain.ResultSet, error) {
	target := c.collectionURL + "?" + EncodeListQuery(q)

	body, err := c.get(ctx, OperationListRuns, target)
	if err != nil {
		return domain.ResultSet{}, err
	}

	rs, err := ParseRunList(body)
	if err != nil {
		c.recordFailure()
		return domain.ResultSet{}, newRequestError(c.cfg.Name, OperationListRuns, target, http.StatusOK, 0, err)
	}
	return rs.Capped(q.Limit), nil
}

// EncodeListQuery renders limit, data_provider and reference_time in that
// order; url.Values would sort the keys
func EncodeListQuery(q ports.ListQuery) string {
	var b strings.Builder
	b.WriteString("limit=")
	b.WriteString(strconv.Itoa(q.Limit))
	b.WriteString("&data_provider=")
	b.WriteString(url.QueryEscape(q.DataProvider))
	b.WriteString("&reference_time=")
	b.WriteString(url.QueryEscape(q.ReferenceTime))
	return b.String()
}

func (c *HTTPRunClient) get(ctx context.Context, operation, target string) ([]byte, error) {
	startTime := time.Now()
	requestID := uuid.NewString()
	log := c.logger.WithRequestID(requestID)

	c.updateMetrics(func(m *Metrics) {
		m.TotalRequests++
		m.LastRequestTime = startTime
	})

	if err := c.limiter.Wait(ctx); err != nil {
		c.recordFailure()
		return nil, newRequestError(c.cfg.Name, operation, target, 0, time.Since(startTime), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		c.recordFailure()
		return nil, newRequestError(c.cfg.Name, operation, target, 0, time.Since(startTime), err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", DefaultContentType)
	req.Header.Set(HeaderRequestID, requestID)
	if c.cfg.APIUser != "" && c.cfg.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("ApiKey %s:%s", c.cfg.APIUser, c.cfg.APIKey))
	}

	log.DebugWithResource("Requesting", c.cfg.Name, "operation", operation, "url", target)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure()
		return nil, newRequestError(c.cfg.Name, operation, target, 0, time.Since(startTime), &NetworkError{URL: target, Err: err})
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	latency := time.Since(startTime)

	if resp.StatusCode == http.StatusNotFound && operation == OperationGetRun {
		c.updateMetrics(func(m *Metrics) {
			m.NotFound++
		})
		return nil, newRequestError(c.cfg.Name, operation, target, resp.StatusCode, latency, ErrNotFound)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.recordFailure()
		return nil, newRequestError(c.cfg.Name, operation, target, resp.StatusCode, latency, fmt.Errorf("HTTP %s", resp.Status))
	}

	limit := c.cfg.MaxResponseSize
	if limit <= 0 {
		limit = MaxResponseSize
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		c.recordFailure()
		return nil, newRequestError(c.cfg.Name, operation, target, resp.StatusCode, latency, err)
	}
	if int64(len(body)) > limit {
		c.recordFailure()
		return nil, newRequestError(c.cfg.Name, operation, target, resp.StatusCode, latency,
			fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, limit))
	}

	c.updateMetrics(func(m *Metrics) {
		m.SuccessfulRequests++
		if m.SuccessfulRequests == 1 {
			m.AverageLatency = latency
		} else {
			// cumulative moving average
			n := time.Duration(m.SuccessfulRequests)
			m.AverageLatency += (latency - m.AverageLatency) / n
		}
	})

	log.DebugDetailed("Response received", "resource", c.cfg.Name, "operation", operation, "status", resp.StatusCode, "bytes", len(body), "latency", latency)

	return body, nil
}

func (c *HTTPRunClient) GetMetrics() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

func (c *HTTPRunClient) recordFailure() {
	c.updateMetrics(func(m *Metrics) {
		m.FailedRequests++
	})
}

func (c *HTTPRunClient) updateMetrics(updateFn func(*Metrics)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	updateFn(&c.metrics)
}
