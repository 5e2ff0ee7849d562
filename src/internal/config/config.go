package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/denull/loggy-agent/src/internal/filter"
)

type Config struct {
	// Application name events are shipped under
	App string `toml:"app"`

	// Suppress all agent output except shipped events
	Quiet bool `toml:"quiet"`

	// Terminate after delivering a fatal-class event
	ExitOnFatal bool `toml:"exit_on_fatal"`

	Remote   RemoteConfig    `toml:"remote"`
	Throttle ThrottleConfig  `toml:"throttle"`
	Console  ConsoleConfig   `toml:"console"`
	Defaults DefaultsConfig  `toml:"defaults"`
	Filters  []filter.Config `toml:"filters"`
	Logging  *LogConfig      `toml:"logging"`
	Listen   ListenConfig    `toml:"listen"`
}

type RemoteConfig struct {
	// Collector base URL for HTTP delivery
	Endpoint string `toml:"endpoint"`

	// Delivery transport: "http" or "tcp"
	Transport string `toml:"transport"`

	// host:port for TCP delivery
	Address string `toml:"address"`

	// Per-request timeout in milliseconds
	TimeoutMS int `toml:"timeout_ms"`

	// Static bearer token sent with every request
	Token string `toml:"token"`

	// HS256 secret for agent-minted session tokens
	JWTSecret string `toml:"jwt_secret"`

	// Skip collector certificate verification on https endpoints
	Insecure bool `toml:"insecure"`
}

type ThrottleConfig struct {
	// Flush delay in milliseconds. Zero or negative delivers directly.
	IntervalMS int `toml:"interval_ms"`

	// Buffered event count that forces an immediate flush
	Limit int `toml:"limit"`
}

type ConsoleConfig struct {
	Enabled bool `toml:"enabled"`

	// "stdout" or "stderr"
	Target string `toml:"target"`

	// "text" or "json"
	Format string `toml:"format"`
}

type DefaultsConfig struct {
	Module string `toml:"module"`
	User   string `toml:"user"`

	// Arbitrary fields stamped onto every event
	Fields map[string]any `toml:"fields"`
}

type ListenConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`

	// TCP ingest port, 0 disables the listener
	TCPPort int `toml:"tcp_port"`

	// Console format for received events: "text" or "json"
	Format string `toml:"format"`

	// Accepted plaintext bearer tokens
	Tokens []string `toml:"tokens"`

	// Accepted argon2id token hashes in PHC format
	TokenHashes []string `toml:"token_hashes"`

	// HS256 secret for JWT bearer verification
	JWTSecret string `toml:"jwt_secret"`

	RateLimit RateLimitConfig `toml:"rate_limit"`
}

type RateLimitConfig struct {
	// Requests allowed per second per client IP. 0 disables.
	Rate float64 `toml:"rate"`

	// Maximum burst above the sustained rate. Defaults to the rate.
	Burst float64 `toml:"burst"`
}

func (c *Config) validate() error {
	if err := c.Remote.validate(); err != nil {
		return err
	}

	if c.Throttle.Limit < 1 {
		return fmt.Errorf("throttle limit must be positive: %d", c.Throttle.Limit)
	}

	switch c.Console.Target {
	case "", "stdout", "stderr":
	default:
		return fmt.Errorf("invalid console target: %s", c.Console.Target)
	}

	switch c.Console.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid console format: %s", c.Console.Format)
	}

	for i := range c.Filters {
		if err := c.Filters[i].Validate(); err != nil {
			return fmt.Errorf("filter[%d]: %w", i, err)
		}
	}

	if c.Logging != nil {
		if err := validateLogConfig(c.Logging); err != nil {
			return err
		}
	}

	return c.Listen.validate()
}

func (r *RemoteConfig) validate() error {
	switch r.Transport {
	case "", "http", "tcp":
	default:
		return fmt.Errorf("invalid remote transport '%s' (must be 'http' or 'tcp')", r.Transport)
	}

	if r.Transport != "tcp" {
		u, err := url.Parse(r.Endpoint)
		if err != nil {
			return fmt.Errorf("invalid remote endpoint '%s': %w", r.Endpoint, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("remote endpoint scheme must be http or https: %s", r.Endpoint)
		}
		if u.Host == "" {
			return fmt.Errorf("remote endpoint missing host: %s", r.Endpoint)
		}
	} else if strings.TrimSpace(r.Address) == "" {
		return fmt.Errorf("remote address required for tcp transport")
	}

	if r.TimeoutMS < 0 {
		return fmt.Errorf("remote timeout cannot be negative: %d ms", r.TimeoutMS)
	}

	if r.Token != "" && r.JWTSecret != "" {
		return fmt.Errorf("remote token and jwt_secret are mutually exclusive")
	}

	return nil
}

func (l *ListenConfig) validate() error {
	if l.Port < 1 || l.Port > 65535 {
		return fmt.Errorf("invalid listen port: %d", l.Port)
	}

	if l.TCPPort < 0 || l.TCPPort > 65535 {
		return fmt.Errorf("invalid listen tcp port: %d", l.TCPPort)
	}

	switch l.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid listen format: %s", l.Format)
	}

	if l.RateLimit.Rate < 0 {
		return fmt.Errorf("listen rate limit cannot be negative")
	}
	if l.RateLimit.Burst < 0 {
		return fmt.Errorf("listen rate limit burst cannot be negative")
	}

	return nil
}
