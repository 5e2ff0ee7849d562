package config

import (
	"path/filepath"
	"testing"

	"github.com/denull/loggy-agent/src/internal/filter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()

	assert.True(t, cfg.ExitOnFatal)
	assert.Equal(t, "http://127.0.0.1:1065/", cfg.Remote.Endpoint)
	assert.Equal(t, "http", cfg.Remote.Transport)
	assert.Equal(t, 100, cfg.Throttle.IntervalMS)
	assert.Equal(t, 1000, cfg.Throttle.Limit)
	assert.True(t, cfg.Console.Enabled)
	assert.Equal(t, 1065, cfg.Listen.Port)

	assert.NoError(t, cfg.validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config { return defaults() }

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "DefaultsPass",
			mutate: func(c *Config) {},
		},
		{
			name:    "BadTransport",
			mutate:  func(c *Config) { c.Remote.Transport = "udp" },
			wantErr: "invalid remote transport",
		},
		{
			name:    "BadEndpointScheme",
			mutate:  func(c *Config) { c.Remote.Endpoint = "ftp://collector:1065/" },
			wantErr: "scheme must be http or https",
		},
		{
			name:    "EndpointMissingHost",
			mutate:  func(c *Config) { c.Remote.Endpoint = "http://" },
			wantErr: "missing host",
		},
		{
			name: "TCPWithoutAddress",
			mutate: func(c *Config) {
				c.Remote.Transport = "tcp"
				c.Remote.Address = ""
			},
			wantErr: "address required",
		},
		{
			name: "TCPWithAddressPasses",
			mutate: func(c *Config) {
				c.Remote.Transport = "tcp"
				c.Remote.Address = "127.0.0.1:9514"
			},
		},
		{
			name:    "NegativeTimeout",
			mutate:  func(c *Config) { c.Remote.TimeoutMS = -1 },
			wantErr: "timeout cannot be negative",
		},
		{
			name: "TokenAndJWTExclusive",
			mutate: func(c *Config) {
				c.Remote.Token = "abc"
				c.Remote.JWTSecret = "secret"
			},
			wantErr: "mutually exclusive",
		},
		{
			name:    "ZeroThrottleLimit",
			mutate:  func(c *Config) { c.Throttle.Limit = 0 },
			wantErr: "throttle limit",
		},
		{
			name:    "BadConsoleTarget",
			mutate:  func(c *Config) { c.Console.Target = "tty" },
			wantErr: "invalid console target",
		},
		{
			name:    "BadConsoleFormat",
			mutate:  func(c *Config) { c.Console.Format = "xml" },
			wantErr: "invalid console format",
		},
		{
			name: "BadFilterPattern",
			mutate: func(c *Config) {
				c.Filters = []filter.Config{{Patterns: []string{"("}}}
			},
			wantErr: "filter[0]",
		},
		{
			name:    "BadLogOutput",
			mutate:  func(c *Config) { c.Logging.Output = "syslog" },
			wantErr: "invalid log output",
		},
		{
			name:    "BadLogLevel",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "NilLoggingPasses",
			mutate:  func(c *Config) { c.Logging = nil },
		},
		{
			name:    "BadListenPort",
			mutate:  func(c *Config) { c.Listen.Port = 0 },
			wantErr: "invalid listen port",
		},
		{
			name:    "BadListenTCPPort",
			mutate:  func(c *Config) { c.Listen.TCPPort = 70000 },
			wantErr: "invalid listen tcp port",
		},
		{
			name:    "BadListenFormat",
			mutate:  func(c *Config) { c.Listen.Format = "csv" },
			wantErr: "invalid listen format",
		},
		{
			name:    "NegativeRate",
			mutate:  func(c *Config) { c.Listen.RateLimit.Rate = -1 },
			wantErr: "rate limit cannot be negative",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestCustomEnvTransform(t *testing.T) {
	assert.Equal(t, "LOGGY_REMOTE_ENDPOINT", customEnvTransform("remote.endpoint"))
	assert.Equal(t, "LOGGY_APP", customEnvTransform("app"))
	assert.Equal(t, "LOGGY_LISTEN_RATE_LIMIT_RATE", customEnvTransform("listen.rate_limit.rate"))
}

func TestGetConfigPath(t *testing.T) {
	t.Run("ExplicitAbsoluteFile", func(t *testing.T) {
		t.Setenv("LOGGY_CONFIG_FILE", "/etc/loggy/agent.toml")
		t.Setenv("LOGGY_CONFIG_DIR", "")
		assert.Equal(t, "/etc/loggy/agent.toml", GetConfigPath())
	})

	t.Run("RelativeFileWithDir", func(t *testing.T) {
		t.Setenv("LOGGY_CONFIG_FILE", "agent.toml")
		t.Setenv("LOGGY_CONFIG_DIR", "/etc/loggy")
		assert.Equal(t, filepath.Join("/etc/loggy", "agent.toml"), GetConfigPath())
	})

	t.Run("DirOnly", func(t *testing.T) {
		t.Setenv("LOGGY_CONFIG_FILE", "")
		t.Setenv("LOGGY_CONFIG_DIR", "/opt/loggy")
		assert.Equal(t, filepath.Join("/opt/loggy", "loggy.toml"), GetConfigPath())
	})
}
