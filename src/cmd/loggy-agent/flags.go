package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/lixenwraith/log"
)

// FlagConfig carries parsed command-line flags.
type FlagConfig struct {
	ConfigFile  string
	ShowVersion bool
	Quiet       bool
	App         string
	Endpoint    string
	LogOutput   string
	LogLevel    string
	LogDir      string
}

// Command-line flags
var (
	// General flags
	configFile  = flag.String("config", "", "Config file path")
	showVersion = flag.Bool("version", false, "Show version information")
	quiet       = flag.Bool("quiet", false, "Suppress agent output except shipped events")
	appName     = flag.String("app", "", "Application name events are shipped under (overrides config)")
	endpoint    = flag.String("endpoint", "", "Collector endpoint URL (overrides config)")

	// Logging flags
	logOutput = flag.String("log-output", "", "Log output: file, stdout, stderr, both, none (overrides config)")
	logLevel  = flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	logDir    = flag.String("log-dir", "", "Log directory (when using file output)")
)

func init() {
	flag.Usage = customUsage
}

func customUsage() {
	fmt.Fprintf(os.Stderr, "Loggy Agent - Client-Side Event Aggregator\n\n")
	fmt.Fprintf(os.Stderr, "Usage: %s [command] [options]\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  auth\n\tGenerate authentication credentials\n")
	fmt.Fprintf(os.Stderr, "  listen\n\tRun a local collector printing received events\n")
	fmt.Fprintf(os.Stderr, "  version\n\tShow version information\n")
	fmt.Fprintf(os.Stderr, "  help\n\tDisplay help information\n")

	fmt.Fprintf(os.Stderr, "\nGeneral:\n")
	fmt.Fprintf(os.Stderr, "  -config string\n\tConfig file path\n")
	fmt.Fprintf(os.Stderr, "  -app string\n\tApplication name events are shipped under (overrides config)\n")
	fmt.Fprintf(os.Stderr, "  -endpoint string\n\tCollector endpoint URL (overrides config)\n")
	fmt.Fprintf(os.Stderr, "  -quiet\n\tSuppress agent output except shipped events\n")
	fmt.Fprintf(os.Stderr, "  -version\n\tShow version information\n")

	fmt.Fprintf(os.Stderr, "\nLogging:\n")
	fmt.Fprintf(os.Stderr, "  -log-output string\n\tLog output: file, stdout, stderr, both, none (overrides config)\n")
	fmt.Fprintf(os.Stderr, "  -log-level string\n\tLog level: debug, info, warn, error (overrides config)\n")
	fmt.Fprintf(os.Stderr, "  -log-dir string\n\tLog directory (when using file output)\n")

	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  # Ship a service's output under the name 'billing'\n")
	fmt.Fprintf(os.Stderr, "  billing-svc 2>&1 | %s --app billing\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "  # Ship to a remote collector with a bearer token in the config\n")
	fmt.Fprintf(os.Stderr, "  tail -F app.log | %s --config /etc/loggy.toml\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "  # Run a local collector for development\n")
	fmt.Fprintf(os.Stderr, "  %s listen --port 1065\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "Environment Variables:\n")
	fmt.Fprintf(os.Stderr, "  LOGGY_CONFIG_FILE    Config file path\n")
	fmt.Fprintf(os.Stderr, "  LOGGY_CONFIG_DIR     Config directory\n")
}

// ParseFlags parses and validates command-line flags.
func ParseFlags() (*FlagConfig, error) {
	flag.Parse()

	if *logOutput != "" {
		validOutputs := map[string]bool{
			"file": true, "stdout": true, "stderr": true,
			"both": true, "none": true,
		}
		if !validOutputs[*logOutput] {
			return nil, fmt.Errorf("invalid log-output: %s (valid: file, stdout, stderr, both, none)", *logOutput)
		}
	}

	if *logLevel != "" {
		if _, err := parseLogLevel(*logLevel); err != nil {
			return nil, fmt.Errorf("invalid log-level: %s (valid: debug, info, warn, error)", *logLevel)
		}
	}

	return &FlagConfig{
		ConfigFile:  *configFile,
		ShowVersion: *showVersion,
		Quiet:       *quiet,
		App:         *appName,
		Endpoint:    *endpoint,
		LogOutput:   *logOutput,
		LogLevel:    *logLevel,
		LogDir:      *logDir,
	}, nil
}

func parseLogLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int(log.LevelDebug), nil
	case "info":
		return int(log.LevelInfo), nil
	case "warn", "warning":
		return int(log.LevelWarn), nil
	case "error":
		return int(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}
