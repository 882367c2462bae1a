// Package config builds the process configuration for the BizniWeb MCP server.
//
// Configuration is resolved once at startup and injected into the components
// that need it; nothing reads the environment after NewConfig returns.
// Priority, lowest to highest:
//  1. Built-in defaults
//  2. Optional YAML file (BIZNISWEB_CONFIG_FILE)
//  3. Environment variables
//  4. Functional options
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIURL is the production BizniWeb GraphQL endpoint.
	DefaultAPIURL = "https://www.vevo.sk/api/graphql"

	// DefaultPageSize is the maximum page size the order list operation
	// supports. Every tool that lists orders uses this constant.
	DefaultPageSize = 30

	// DefaultMaxFetched bounds how many raw orders a single statistics
	// aggregation may pull before returning a partial result.
	DefaultMaxFetched = 10000
)

// DefaultExcludedStatuses lists order status display names whose orders are
// fetched but never counted toward revenue, item, or daily aggregates.
// These are the platform's cancellation and unsettled-payment states.
var DefaultExcludedStatuses = []string{
	"Storno",
	"Platba online - platnosť vypršala",
	"Platba online - platba zamietnutá",
	"Čaká na úhradu",
	"GoPay - platebni metoda potvrzena",
}

// Config holds all configuration for the server.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Stats     StatsConfig     `yaml:"stats"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// APIConfig configures the remote GraphQL executor.
type APIConfig struct {
	// URL of the GraphQL endpoint.
	URL string `yaml:"url"`

	// Token for the BW-API-Key header. May be empty at startup; the
	// executor rejects calls without it before touching the network.
	Token string `yaml:"token"`

	// Timeout for a single GraphQL round trip.
	Timeout time.Duration `yaml:"timeout"`
}

// StatsConfig configures the statistics aggregator.
type StatsConfig struct {
	PageSize         int      `yaml:"page_size"`
	MaxFetched       int      `yaml:"max_fetched"`
	ExcludedStatuses []string `yaml:"excluded_statuses"`
}

// LoggingConfig configures the stderr logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

// TelemetryConfig configures optional trace export. Traces are only exported
// when an OTLP endpoint is set; the HTTP client instrumentation itself is
// always on and no-ops without a provider.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Option mutates a Config during construction. Options are applied last and
// therefore win over file and environment values.
type Option func(*Config)

// WithAPIURL overrides the GraphQL endpoint URL.
func WithAPIURL(u string) Option {
	return func(c *Config) { c.API.URL = u }
}

// WithAPIToken overrides the API credential.
func WithAPIToken(token string) Option {
	return func(c *Config) { c.API.Token = token }
}

// WithLogLevel overrides the log level.
func WithLogLevel(level string) Option {
	return func(c *Config) { c.Logging.Level = level }
}

// WithExcludedStatuses replaces the status exclusion set.
func WithExcludedStatuses(statuses []string) Option {
	return func(c *Config) { c.Stats.ExcludedStatuses = statuses }
}

// WithPageSize overrides the order list page size.
func WithPageSize(n int) Option {
	return func(c *Config) { c.Stats.PageSize = n }
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			URL:     DefaultAPIURL,
			Timeout: 30 * time.Second,
		},
		Stats: StatsConfig{
			PageSize:         DefaultPageSize,
			MaxFetched:       DefaultMaxFetched,
			ExcludedStatuses: append([]string(nil), DefaultExcludedStatuses...),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// NewConfig builds a validated Config from defaults, the optional config
// file, the environment, and the given options, in that order.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("BIZNISWEB_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	cfg.applyEnvironment()

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnvironment() {
	if v := os.Getenv("BIZNISWEB_API_URL"); v != "" {
		c.API.URL = v
	}
	if v := os.Getenv("BIZNISWEB_API_TOKEN"); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv("BIZNISWEB_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.API.Timeout = d
		}
	}
	if v := os.Getenv("BIZNISWEB_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("BIZNISWEB_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("BIZNISWEB_STATS_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Stats.PageSize = n
		}
	}
	if v := os.Getenv("BIZNISWEB_STATS_MAX_FETCHED"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Stats.MaxFetched = n
		}
	}
	if v := os.Getenv("BIZNISWEB_EXCLUDED_STATUSES"); v != "" {
		parts := strings.Split(v, ",")
		statuses := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				statuses = append(statuses, s)
			}
		}
		if len(statuses) > 0 {
			c.Stats.ExcludedStatuses = statuses
		}
	}
	if v := os.Getenv("BIZNISWEB_TELEMETRY_ENABLED"); v != "" {
		c.Telemetry.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Telemetry.Endpoint = v
	}
}

// Validate checks structural configuration. The API token is deliberately
// not required here: the executor checks it on first use, matching the
// platform's lazy credential check.
func (c *Config) Validate() error {
	if c.API.URL == "" {
		return fmt.Errorf("api url must not be empty")
	}
	u, err := url.Parse(c.API.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api url %q is not a valid absolute URL", c.API.URL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive")
	}
	if c.Stats.PageSize <= 0 {
		return fmt.Errorf("stats page size must be positive")
	}
	if c.Stats.MaxFetched <= 0 {
		return fmt.Errorf("stats max fetched must be positive")
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log format %q must be json or text", c.Logging.Format)
	}
	return nil
}
