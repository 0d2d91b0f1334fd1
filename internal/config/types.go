package config

import (
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Filename  string           `mapstructure:"-" yaml:"-"`
	API       APIConfig        `mapstructure:"api" yaml:"api"`
	Resources []ResourceConfig `mapstructure:"resources" yaml:"resources"`
	Query     QueryConfig      `mapstructure:"query" yaml:"query"`
	Watch     WatchConfig      `mapstructure:"watch" yaml:"watch"`
	Output    OutputConfig     `mapstructure:"output" yaml:"output"`
	Logging   LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// APIConfig holds the status service connection settings
type APIConfig struct {
	BaseURL           string        `mapstructure:"base_url" yaml:"base_url"`
	User              string        `mapstructure:"user" yaml:"user"`
	Key               string        `mapstructure:"key" yaml:"key"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int           `mapstructure:"burst" yaml:"burst"`
}

// ResourceConfig names one collection of model runs on the service
type ResourceConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	Root string `mapstructure:"root" yaml:"root"`
}

// QueryConfig is the initial filter applied to every selected resource
type QueryConfig struct {
	ID                string   `mapstructure:"id" yaml:"id"`
	DataProvider      string   `mapstructure:"data_provider" yaml:"data_provider"`
	ReferenceTime     string   `mapstructure:"reference_time" yaml:"reference_time"`
	Resources         []string `mapstructure:"resources" yaml:"resources"`
	Limit             int      `mapstructure:"limit" yaml:"limit"`
	DiscardSuperseded bool     `mapstructure:"discard_superseded" yaml:"discard_superseded"`
}

// WatchConfig controls periodic refreshing
type WatchConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
}

// OutputConfig controls how results are rendered
type OutputConfig struct {
	Format  string   `mapstructure:"format" yaml:"format"`
	Columns []string `mapstructure:"columns" yaml:"columns"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Theme      string `mapstructure:"theme" yaml:"theme"`
	LogDir     string `mapstructure:"log_dir" yaml:"log_dir"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	FileOutput bool   `mapstructure:"file_output" yaml:"file_output"`
}
