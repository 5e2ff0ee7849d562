package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/denull/loggy-agent/src/internal/config"
	"github.com/denull/loggy-agent/src/internal/core"
	"github.com/denull/loggy-agent/src/internal/filter"
	"github.com/denull/loggy-agent/src/internal/source"
	"github.com/denull/loggy-agent/src/pkg/loggy"

	"github.com/lixenwraith/log"
)

// Agent wires stdin ingestion through the filter chain into the
// shipping client.
type Agent struct {
	client *loggy.Logger
	chain  *filter.Chain
	stdin  *source.Stdin
	bridge *loggy.Bridge
}

// buildAgent creates the shipping client and its input pipeline
func buildAgent(cfg *config.Config) (*Agent, error) {
	if strings.TrimSpace(cfg.App) == "" {
		return nil, fmt.Errorf("application name required (set app in config or --app)")
	}

	client, err := loggy.New(cfg.App, clientOptions(cfg)...)
	if err != nil {
		return nil, err
	}

	chain, err := filter.NewChain(cfg.Filters, logger)
	if err != nil {
		client.Close()
		return nil, err
	}

	a := &Agent{
		client: client,
		chain:  chain,
	}
	a.bridge = client.HandleGlobalEvents(loggy.Hooks{
		Panic:   loggy.On(),
		Failure: loggy.On(),
		Warning: loggy.On(),
		Exit:    loggy.On(),
	})
	a.stdin = source.NewStdin(os.Stdin, a.ship, logger)

	logger.Info("msg", "Agent ready",
		"app", cfg.App,
		"endpoint", endpointLabel(cfg),
		"filters", chain.Len())

	return a, nil
}

// Start begins consuming stdin
func (a *Agent) Start() {
	a.stdin.Start()
}

// Done closes when stdin is exhausted
func (a *Agent) Done() <-chan struct{} {
	return a.stdin.Done()
}

// Shutdown stops ingestion, reports the exit and drains the buffer
func (a *Agent) Shutdown(exitCode int) {
	a.stdin.Stop()
	a.bridge.Exit(exitCode)
	a.client.Close()

	logger.Info("msg", "Loggy agent stopped",
		"stdin", a.stdin.Stats(),
		"filters", a.chain.Stats())
}

// ship forwards one ingested event through the filter chain
func (a *Agent) ship(ev core.Event) {
	if !a.chain.Apply(ev) {
		return
	}
	a.client.Log(loggy.Record(loggy.Fields(ev)))
}

// clientOptions maps file configuration onto client options
func clientOptions(cfg *config.Config) []loggy.Option {
	opts := []loggy.Option{
		loggy.WithExitOnFatal(cfg.ExitOnFatal),
		loggy.WithThrottleInterval(time.Duration(cfg.Throttle.IntervalMS) * time.Millisecond),
		loggy.WithThrottleLimit(cfg.Throttle.Limit),
		loggy.WithDiagnostics(logger),
	}

	if cfg.Remote.Transport == "tcp" {
		opts = append(opts, loggy.WithEndpoint("tcp://"+cfg.Remote.Address))
	} else if cfg.Remote.Endpoint != "" {
		opts = append(opts, loggy.WithEndpoint(cfg.Remote.Endpoint))
	}
	if cfg.Remote.TimeoutMS > 0 {
		opts = append(opts, loggy.WithTimeout(time.Duration(cfg.Remote.TimeoutMS)*time.Millisecond))
	}
	if cfg.Remote.Insecure {
		opts = append(opts, loggy.WithInsecureTLS())
	}
	if cfg.Remote.Token != "" {
		opts = append(opts, loggy.WithToken(cfg.Remote.Token))
	}
	if cfg.Remote.JWTSecret != "" {
		opts = append(opts, loggy.WithJWT(cfg.Remote.JWTSecret, 0))
	}

	echo := cfg.Console.Enabled && !cfg.Quiet
	opts = append(opts, loggy.WithConsole(echo))
	if echo {
		if cfg.Console.Target == "stderr" {
			opts = append(opts, loggy.WithConsoleWriter(os.Stderr))
		}
		if cfg.Console.Format != "" {
			opts = append(opts, loggy.WithConsoleFormat(cfg.Console.Format))
		}
	}

	defaults := loggy.Fields{}
	for k, v := range cfg.Defaults.Fields {
		defaults[k] = v
	}
	if cfg.Defaults.Module != "" {
		defaults[core.FieldModule] = cfg.Defaults.Module
	}
	if cfg.Defaults.User != "" {
		defaults[core.FieldUser] = cfg.Defaults.User
	}
	if len(defaults) > 0 {
		opts = append(opts, loggy.WithDefaults(defaults))
	}

	return opts
}

func endpointLabel(cfg *config.Config) string {
	if cfg.Remote.Transport == "tcp" {
		return "tcp://" + cfg.Remote.Address
	}
	return cfg.Remote.Endpoint
}

// applyFlagOverrides layers command-line flags over file configuration
func applyFlagOverrides(cfg *config.Config, flagCfg *FlagConfig) {
	if flagCfg.App != "" {
		cfg.App = flagCfg.App
	}
	if flagCfg.Endpoint != "" {
		if strings.HasPrefix(flagCfg.Endpoint, "tcp://") {
			cfg.Remote.Transport = "tcp"
			cfg.Remote.Address = strings.TrimPrefix(flagCfg.Endpoint, "tcp://")
		} else {
			cfg.Remote.Transport = "http"
			cfg.Remote.Endpoint = flagCfg.Endpoint
		}
	}
	if flagCfg.Quiet {
		cfg.Quiet = true
	}

	if cfg.Logging == nil {
		cfg.Logging = config.DefaultLogConfig()
	}
	if flagCfg.LogOutput != "" {
		cfg.Logging.Output = flagCfg.LogOutput
	}
	if flagCfg.LogLevel != "" {
		cfg.Logging.Level = flagCfg.LogLevel
	}
	if flagCfg.LogDir != "" {
		if cfg.Logging.File == nil {
			cfg.Logging.File = &config.LogFileConfig{
				Name:           "loggy-agent",
				MaxSizeMB:      100,
				MaxTotalSizeMB: 1000,
			}
		}
		cfg.Logging.File.Directory = flagCfg.LogDir
	}
}

// initializeLogger sets up the diagnostic logger based on configuration
func initializeLogger(cfg *config.Config) error {
	logger = log.NewLogger()

	var configArgs []string

	if cfg.Quiet {
		// In quiet mode, disable ALL logging output
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=false",
			"level=255")

		return logger.InitWithDefaults(configArgs...)
	}

	if cfg.Logging == nil {
		cfg.Logging = config.DefaultLogConfig()
	}

	levelValue, err := parseLogLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	configArgs = append(configArgs, fmt.Sprintf("level=%d", levelValue))

	// Configure based on output mode
	switch cfg.Logging.Output {
	case "none":
		configArgs = append(configArgs, "disable_file=true", "enable_stdout=false")

	case "stdout":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stdout")

	case "stderr":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stderr")

	case "file":
		configArgs = append(configArgs, "enable_stdout=false")
		configureFileLogging(&configArgs, cfg)

	case "both":
		configArgs = append(configArgs, "enable_stdout=true")
		configureFileLogging(&configArgs, cfg)
		configureConsoleTarget(&configArgs, cfg)

	default:
		return fmt.Errorf("invalid log output mode: %s", cfg.Logging.Output)
	}

	// Apply format if specified
	if cfg.Logging.Console != nil && cfg.Logging.Console.Format != "" {
		configArgs = append(configArgs, fmt.Sprintf("format=%s", cfg.Logging.Console.Format))
	}

	return logger.InitWithDefaults(configArgs...)
}

// configureFileLogging sets up file-based logging parameters
func configureFileLogging(configArgs *[]string, cfg *config.Config) {
	if cfg.Logging.File != nil {
		*configArgs = append(*configArgs,
			fmt.Sprintf("directory=%s", cfg.Logging.File.Directory),
			fmt.Sprintf("name=%s", cfg.Logging.File.Name),
			fmt.Sprintf("max_size_mb=%d", cfg.Logging.File.MaxSizeMB),
			fmt.Sprintf("max_total_size_mb=%d", cfg.Logging.File.MaxTotalSizeMB))

		if cfg.Logging.File.RetentionHours > 0 {
			*configArgs = append(*configArgs,
				fmt.Sprintf("retention_period_hrs=%.1f", cfg.Logging.File.RetentionHours))
		}
	}
}

// configureConsoleTarget sets up console output parameters
func configureConsoleTarget(configArgs *[]string, cfg *config.Config) {
	target := "stderr" // default

	if cfg.Logging.Console != nil && cfg.Logging.Console.Target != "" {
		target = cfg.Logging.Console.Target
	}

	// Split mode routes info/debug to stdout, warn/error to stderr
	if target == "split" {
		*configArgs = append(*configArgs, "stdout_split_mode=true")
		*configArgs = append(*configArgs, "stdout_target=split")
	} else {
		*configArgs = append(*configArgs, fmt.Sprintf("stdout_target=%s", target))
	}
}
