// Package config loads the startup configuration file that seeds the first
// ConfigSnapshot (spec.md §6's "Configuration source") and converts it into
// domain types. Loading and validation follow the teacher's pkg/config/
// config.go: defaults applied before parse, YAML unmarshal, then
// environment-variable overrides, then a cascading Validate().
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lhanjian/yarhs/pkg/domain"
)

// Config is the root of the startup configuration file (spec.md §6's
// recognized sections: server, logging, http, performance, routes,
// virtual_hosts).
type Config struct {
	Server      ServerConfig         `yaml:"server"`
	Logging     domain.LoggingConfig `yaml:"logging"`
	HTTP        domain.HTTPConfig    `yaml:"http"`
	Performance PerformanceConfig    `yaml:"performance"`
	Routes      RoutesConfig         `yaml:"routes"`
	VirtualHosts []domain.VirtualHost `yaml:"virtual_hosts"`
}

// ServerConfig holds the two listen addresses plus optional process tuning.
type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	APIHost string `yaml:"api_host"`
	APIPort int    `yaml:"api_port"`

	Workers                *int `yaml:"workers,omitempty"`
	EnableStatePersistence bool `yaml:"enable_state_persistence,omitempty"`
	StateFile              string `yaml:"state_file,omitempty"`
}

// PerformanceConfig mirrors domain.PerformanceConfig but with second-granular
// scalar fields, matching the wire/file representation used everywhere else
// in the system (original_source/src/config/types.rs's u64 second fields).
type PerformanceConfig struct {
	KeepAliveTimeout uint64  `yaml:"keep_alive_timeout"`
	ReadTimeout      uint64  `yaml:"read_timeout"`
	WriteTimeout     uint64  `yaml:"write_timeout"`
	MaxConnections   *uint64 `yaml:"max_connections,omitempty"`
}

// CustomRouteEntry is one "path -> action" pair. A YAML list (rather than a
// map) is used here so insertion order — which spec.md §4.4 step 3 requires
// for longest-prefix tie-breaking — survives parsing without extra
// bookkeeping; the wire (xDS POST/GET) representation is still a JSON object,
// handled separately in pkg/xds.
type CustomRouteEntry struct {
	Path   string            `yaml:"path"`
	Action domain.RouteAction `yaml:",inline"`
}

// RoutesConfig is the legacy routing bundle's file representation.
type RoutesConfig struct {
	FaviconPaths []string           `yaml:"favicon_paths,omitempty"`
	IndexFiles   []string           `yaml:"index_files"`
	CustomRoutes []CustomRouteEntry `yaml:"custom_routes,omitempty"`
	Health       domain.HealthConfig `yaml:"health"`
}

// Load reads and validates the startup configuration. An empty path yields
// pure defaults (useful for tests and for --config-less smoke runs).
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		//nolint:gosec // config file path is controlled by the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0", Port: 8080,
			APIHost: "0.0.0.0", APIPort: 9090,
		},
		Logging: domain.LoggingConfig{
			Level: "info", AccessLog: true, AccessLogFormat: "combined",
		},
		HTTP: domain.HTTPConfig{
			DefaultContentType: "application/octet-stream",
			ServerName:         "yarhs",
			MaxBodySize:        10 << 20,
		},
		Performance: PerformanceConfig{
			KeepAliveTimeout: 60, ReadTimeout: 30, WriteTimeout: 30,
		},
		Routes: RoutesConfig{
			FaviconPaths: []string{"/favicon.ico", "/favicon.svg"},
			IndexFiles:   []string{"index.html", "index.htm"},
			Health:       domain.DefaultHealthConfig(),
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("YARHS_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("YARHS_PORT"); v != "" {
		if n, err := parseUint(v); err == nil {
			cfg.Server.Port = int(n)
		}
	}
	if v := os.Getenv("YARHS_API_HOST"); v != "" {
		cfg.Server.APIHost = v
	}
	if v := os.Getenv("YARHS_API_PORT"); v != "" {
		if n, err := parseUint(v); err == nil {
			cfg.Server.APIPort = int(n)
		}
	}
	if v := os.Getenv("YARHS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("YARHS_SERVER_NAME"); v != "" {
		cfg.HTTP.ServerName = v
	}
	if v := os.Getenv("YARHS_MAX_BODY_SIZE"); v != "" {
		if n, err := parseUint(v); err == nil {
			cfg.HTTP.MaxBodySize = int64(n)
		}
	}
}

func parseUint(s string) (uint64, error) {
	var n uint64
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}

// Validate normalizes defaults and rejects structurally invalid config.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	switch level {
	case "trace", "debug", "info", "warn", "error":
		c.Logging.Level = level
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.APIPort < 1 || c.Server.APIPort > 65535 {
		return fmt.Errorf("server.api_port %d out of range", c.Server.APIPort)
	}
	if c.Server.APIPort == c.Server.Port && c.Server.APIHost == c.Server.Host {
		return fmt.Errorf("server.api_port must differ from server.port when hosts are equal")
	}
	if c.HTTP.MaxBodySize < 0 {
		return fmt.Errorf("http.max_body_size must be >= 0")
	}
	if c.HTTP.ServerName == "" {
		return fmt.Errorf("http.server_name must be non-empty")
	}
	return nil
}

// ToSnapshot converts the parsed file config into the immutable domain
// representation used to seed the registry.
func (c *Config) ToSnapshot() *domain.ConfigSnapshot {
	routes := domain.RoutesBundle{
		FaviconPaths: c.Routes.FaviconPaths,
		IndexFiles:   c.Routes.IndexFiles,
		CustomRoutes: map[string]domain.RouteAction{},
		Health:       c.Routes.Health,
	}
	for _, entry := range c.Routes.CustomRoutes {
		routes.SetCustomRoute(entry.Path, entry.Action)
	}

	perf := domain.PerformanceConfig{
		KeepAliveTimeout: time.Duration(c.Performance.KeepAliveTimeout) * time.Second,
		ReadTimeout:      time.Duration(c.Performance.ReadTimeout) * time.Second,
		WriteTimeout:     time.Duration(c.Performance.WriteTimeout) * time.Second,
	}
	if c.Performance.MaxConnections != nil {
		v := int64(*c.Performance.MaxConnections)
		perf.MaxConnections = &v
	}

	return &domain.ConfigSnapshot{
		Listener: domain.Listener{
			Main: domain.Endpoint{Host: c.Server.Host, Port: c.Server.Port},
			API:  domain.Endpoint{Host: c.Server.APIHost, Port: c.Server.APIPort},
		},
		Routes:      routes,
		HTTP:        c.HTTP,
		Logging:     c.Logging,
		Performance: perf,
		VirtualHosts: c.VirtualHosts,
	}
}
