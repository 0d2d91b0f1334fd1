package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/thushan/runstatus/internal/core/domain"
	"github.com/thushan/runstatus/internal/render"
)

const (
	DefaultBaseURL      = "http://localhost:8000"
	DefaultConfigName   = "runstatus"
	DefaultEnvFile      = ".env"
	EnvPrefix           = "RUNSTATUS"
	EnvConfigFile       = "RUNSTATUS_CONFIG_FILE"
	ModelStatusName     = "modelstatus"
	ModelStatusRoot     = "/modelstatus/v0/model_run"
	ProductStatusName   = "productstatus"
	ProductStatusRoot   = "/productstatus/v0/model_run"
	DefaultWatchPeriod  = 30 * time.Second
	DefaultAPITimeout   = 30 * time.Second
	DefaultLogDirectory = "./logs"

	FormatTable = render.FormatTable
	FormatJSON  = render.FormatJSON
	FormatYAML  = render.FormatYAML
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultAPITimeout,
			Burst:   1,
		},
		Resources: []ResourceConfig{
			{Name: ModelStatusName, Root: ModelStatusRoot},
			{Name: ProductStatusName, Root: ProductStatusRoot},
		},
		Query: QueryConfig{
			Limit: domain.DefaultLimit,
		},
		Watch: WatchConfig{
			Interval: DefaultWatchPeriod,
		},
		Output: OutputConfig{
			Format:  FormatTable,
			Columns: slices.Clone(render.DefaultColumns),
		},
		Logging: LoggingConfig{
			Level:      "info",
			Theme:      "default",
			LogDir:     DefaultLogDirectory,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
		},
	}
}

// flagKeys maps CLI flag names onto config keys
var flagKeys = map[string]string{
	"base-url":       "api.base_url",
	"resource":       "query.resources",
	"id":             "query.id",
	"data-provider":  "query.data_provider",
	"reference-time": "query.reference_time",
	"limit":          "query.limit",
	"output":         "output.format",
	"watch":          "watch.enabled",
	"log-level":      "logging.level",
}

// RegisterFlags registers the CLI flags that map onto config keys
func RegisterFlags(flags *pflag.FlagSet) {
	d := DefaultConfig()
	flags.String("base-url", d.API.BaseURL, "status service base URL")
	flags.StringSlice("resource", nil, "resource roots to query by name (default all)")
	flags.String("id", "", "look up a single model run by id")
	flags.String("data-provider", "", "filter by data provider")
	flags.String("reference-time", "", "filter by reference time")
	flags.Int("limit", d.Query.Limit, "maximum number of runs")
	flags.StringP("output", "o", d.Output.Format, "output format: table, json or yaml")
	flags.BoolP("watch", "w", false, "refresh periodically")
	flags.String("log-level", d.Logging.Level, "log level")
}

// LoadOptions controls where configuration comes from
type LoadOptions struct {
	Flags      *pflag.FlagSet
	ConfigFile string
	EnvFile    string
}

// Loader reads configuration and can watch the file for changes
type Loader struct {
	v *viper.Viper
}

// Load reads configuration, lowest priority first: defaults, config file,
// environment (RUNSTATUS_*), changed CLI flags
func Load(opts LoadOptions) (*Config, *Loader, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("error reading env file %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, nil, fmt.Errorf("binding flag --%s: %w", name, err)
				}
			}
		}
	}

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = os.Getenv(EnvConfigFile)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			// It's okay if config file doesn't exist
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	loader := &Loader{v: v}
	cfg, err := loader.decode()
	if err != nil {
		return nil, nil, err
	}
	return cfg, loader, nil
}

// ConfigFileUsed is the path of the file that was read, if any
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Watch calls onChange with the re-read configuration every time the
// config file is written. It is a no-op without a config file.
func (l *Loader) Watch(onChange func(cfg *Config, err error)) bool {
	if l.v.ConfigFileUsed() == "" {
		return false
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(l.decode())
	})
	l.v.WatchConfig()
	return true
}

func (l *Loader) decode() (*Config, error) {
	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Filename = l.v.ConfigFileUsed()
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.user", d.API.User)
	v.SetDefault("api.key", d.API.Key)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("api.requests_per_second", d.API.RequestsPerSecond)
	v.SetDefault("api.burst", d.API.Burst)

	resources := make([]map[string]any, 0, len(d.Resources))
	for _, r := range d.Resources {
		resources = append(resources, map[string]any{"name": r.Name, "root": r.Root})
	}
	v.SetDefault("resources", resources)

	v.SetDefault("query.id", d.Query.ID)
	v.SetDefault("query.data_provider", d.Query.DataProvider)
	v.SetDefault("query.reference_time", d.Query.ReferenceTime)
	v.SetDefault("query.resources", d.Query.Resources)
	v.SetDefault("query.limit", d.Query.Limit)
	v.SetDefault("query.discard_superseded", d.Query.DiscardSuperseded)

	v.SetDefault("watch.enabled", d.Watch.Enabled)
	v.SetDefault("watch.interval", d.Watch.Interval)

	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.columns", d.Output.Columns)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.theme", d.Logging.Theme)
	v.SetDefault("logging.log_dir", d.Logging.LogDir)
	v.SetDefault("logging.max_size", d.Logging.MaxSize)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age", d.Logging.MaxAge)
	v.SetDefault("logging.file_output", d.Logging.FileOutput)
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url is required"))
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL))
	}

	if c.API.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("api.requests_per_second must not be negative"))
	}

	if len(c.Resources) == 0 {
		errs = append(errs, errors.New("at least one resource is required"))
	}
	seen := make(map[string]bool, len(c.Resources))
	for i, r := range c.Resources {
		switch {
		case r.Name == "":
			errs = append(errs, fmt.Errorf("resources[%d]: name is required", i))
		case seen[r.Name]:
			errs = append(errs, fmt.Errorf("resources[%d]: duplicate name %q", i, r.Name))
		}
		seen[r.Name] = true

		if !strings.HasPrefix(r.Root, "/") && !strings.Contains(r.Root, "://") {
			errs = append(errs, fmt.Errorf("resources[%d]: root %q must start with / or be an absolute URL", i, r.Root))
		}
	}

	if c.Query.Limit <= 0 {
		errs = append(errs, fmt.Errorf("query.limit: %w", domain.ErrInvalidLimit))
	}

	switch c.Output.Format {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		errs = append(errs, fmt.Errorf("output.format %q must be one of table, json, yaml", c.Output.Format))
	}

	if _, err := render.ParseColumns(c.Output.Columns); err != nil {
		errs = append(errs, fmt.Errorf("output.columns: %w", err))
	}

	if c.Watch.Interval <= 0 {
		errs = append(errs, errors.New("watch.interval must be positive"))
	}

	return errors.Join(errs...)
}

// SelectedResources returns the resources named in query.resources, or all
// of them when none are named
func (c *Config) SelectedResources() ([]ResourceConfig, error) {
	if len(c.Query.Resources) == 0 {
		return c.Resources, nil
	}

	selected := make([]ResourceConfig, 0, len(c.Query.Resources))
	for _, name := range c.Query.Resources {
		idx := slices.IndexFunc(c.Resources, func(r ResourceConfig) bool { return r.Name == name })
		if idx < 0 {
			return nil, fmt.Errorf("unknown resource %q", name)
		}
		selected = append(selected, c.Resources[idx])
	}
	return selected, nil
}

// InitialFilter is the filter every controller starts from
func (c *Config) InitialFilter() domain.FilterState {
	return domain.FilterState{
		ID:            c.Query.ID,
		DataProvider:  c.Query.DataProvider,
		ReferenceTime: c.Query.ReferenceTime,
		Limit:         c.Query.Limit,
	}
}
