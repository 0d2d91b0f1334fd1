package statusapi

import (
	"time"
)

// Config describes one resource root on a status service
type Config struct {
	Name              string
	BaseURL           string
	Root              string
	APIUser           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	// MaxResponseSize caps a response body, zero means MaxResponseSize
	MaxResponseSize int64
}

// Metrics tracks request statistics for one client
type Metrics struct {
	LastRequestTime    time.Time
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	NotFound           int64
	AverageLatency     time.Duration
}
