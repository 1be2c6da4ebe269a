// Package config provides configuration loading from environment variables
// and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Transports supported by the server.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Provider refs loaded when MCP_PROVIDERS is not set.
const DefaultProviders = "tools.examples;tools.math;tools.text;tools.extract;tools.health;resources.templates;prompts.examples"

// Config holds all configuration for the MCP server.
//
// Values are resolved in order: struct tag defaults, environment, config
// file, then command line flags applied by the caller.
type Config struct {
	ConfigFile string `env:"MCP_CONFIG_FILE" yaml:"-"`

	ServerName        string   `env:"MCP_SERVER_NAME,default=MCP Server Template" yaml:"server_name"`
	ServerVersion     string   `env:"MCP_SERVER_VERSION,default=1.0.0" yaml:"server_version"`
	ServerDescription string   `env:"MCP_SERVER_DESCRIPTION,default=A production-ready MCP server template" yaml:"server_description"`
	Host              string   `env:"MCP_HOST,default=0.0.0.0" yaml:"host"`
	Port              int      `env:"MCP_PORT,default=8000" yaml:"port"`
	Transport         string   `env:"MCP_TRANSPORT,default=http" yaml:"transport"` // http or stdio
	Path              string   `env:"MCP_PATH,default=/mcp" yaml:"path"`
	Providers         []string `env:"MCP_PROVIDERS" yaml:"providers"` // ;-separated, in load order

	EnableHealthCheck bool  `env:"ENABLE_HEALTH_CHECK,default=true" yaml:"enable_health_check"`
	TimeoutSeconds    int   `env:"TIMEOUT_SECONDS,default=30" yaml:"timeout_seconds"`   // per invocation
	MaxRequestSize    int64 `env:"MAX_REQUEST_SIZE,default=1048576" yaml:"max_request_size"` // bytes

	Environment string `env:"ENVIRONMENT,default=production" yaml:"environment"`
	Debug       bool   `env:"DEBUG,default=false" yaml:"debug"`

	RedisURL          string `env:"REDIS_URL" yaml:"redis_url"`
	KVKeyPrefix       string `env:"KV_KEY_PREFIX,default=mcp:kv:" yaml:"kv_key_prefix"`
	LocationCacheSize int    `env:"LOCATION_CACHE_SIZE,default=64" yaml:"location_cache_size"`

	// Logging configuration
	LogLevel      string `env:"LOG_LEVEL,default=info" yaml:"log_level"`
	LogFormat     string `env:"LOG_FORMAT,default=text" yaml:"log_format"` // text or json
	LogFile       string `env:"LOG_FILE" yaml:"log_file"`                  // empty = stderr only
	LogEnabled    bool   `env:"LOG_ENABLED,default=true" yaml:"log_enabled"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB,default=10" yaml:"log_max_size_mb"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS,default=5" yaml:"log_max_backups"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS,default=28" yaml:"log_max_age_days"`
	LogCompress   bool   `env:"LOG_COMPRESS,default=true" yaml:"log_compress"`
}

// Load reads configuration from the environment, then overlays the YAML file
// at path (or MCP_CONFIG_FILE when path is empty).
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decoding environment: %w", err)
	}
	if len(cfg.Providers) == 0 {
		cfg.Providers = strings.Split(DefaultProviders, ";")
	}

	if path == "" {
		path = cfg.ConfigFile
	}
	if path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
		cfg.ConfigFile = path
	}

	cfg.Providers = cleanRefs(cfg.Providers)
	return cfg, nil
}

func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func cleanRefs(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref = strings.TrimSpace(ref); ref != "" {
			out = append(out, ref)
		}
	}
	return out
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Transport {
	case TransportHTTP, TransportStdio:
	default:
		errs = append(errs, fmt.Errorf("MCP_TRANSPORT must be %q or %q, got %q", TransportHTTP, TransportStdio, c.Transport))
	}
	if c.Transport == TransportHTTP {
		if c.Port < 1 || c.Port > 65535 {
			errs = append(errs, fmt.Errorf("MCP_PORT must be between 1 and 65535, got %d", c.Port))
		}
		if !strings.HasPrefix(c.Path, "/") {
			errs = append(errs, fmt.Errorf("MCP_PATH must start with /, got %q", c.Path))
		}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	if c.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("TIMEOUT_SECONDS must not be negative, got %d", c.TimeoutSeconds))
	}
	if c.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Errorf("MAX_REQUEST_SIZE must be positive, got %d", c.MaxRequestSize))
	}
	if len(c.Providers) == 0 {
		errs = append(errs, errors.New("MCP_PROVIDERS must name at least one provider"))
	}
	if c.RedisURL != "" {
		if _, err := url.Parse(c.RedisURL); err != nil {
			errs = append(errs, fmt.Errorf("REDIS_URL: %w", err))
		}
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// IsDevelopment reports whether the server runs in development.
func (c *Config) IsDevelopment() bool {
	switch strings.ToLower(c.Environment) {
	case "development", "dev", "local":
		return true
	}
	return false
}

// EffectiveLogLevel returns debug when DEBUG is set, LOG_LEVEL otherwise.
func (c *Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}

// Addr returns the listen address of the HTTP transport.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Endpoint returns the URL clients use to reach the HTTP transport.
func (c *Config) Endpoint() string {
	host := c.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(c.Port)) + c.Path
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	cp := *c
	cp.Providers = append([]string(nil), c.Providers...)
	if cp.RedisURL != "" {
		if u, err := url.Parse(cp.RedisURL); err == nil {
			cp.RedisURL = u.Redacted()
		} else {
			cp.RedisURL = "xxxxx"
		}
	}
	return &cp
}
