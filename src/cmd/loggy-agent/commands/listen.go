package commands

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/denull/loggy-agent/src/internal/config"
	"github.com/denull/loggy-agent/src/internal/receiver"

	"github.com/lixenwraith/log"
)

// ListenCommand runs a development collector that prints every event
// agents ship to it.
type ListenCommand struct {
	output io.Writer
	errOut io.Writer
}

// NewListenCommand creates a new listen command
func NewListenCommand() *ListenCommand {
	return &ListenCommand{
		output: os.Stdout,
		errOut: os.Stderr,
	}
}

func (lc *ListenCommand) Execute(args []string) error {
	cmd := flag.NewFlagSet("listen", flag.ContinueOnError)
	cmd.SetOutput(lc.errOut)

	var (
		cfgFile     = cmd.String("c", "", "Config file with a [listen] section")
		cfgFileLong = cmd.String("config", "", "Config file with a [listen] section")
		address     = cmd.String("a", "", "Bind address")
		addressLong = cmd.String("address", "", "Bind address")
		port        = cmd.Int("p", 0, "HTTP ingest port")
		portLong    = cmd.Int("port", 0, "HTTP ingest port")
		tcpPort     = cmd.Int("t", -1, "TCP ingest port (0 disables)")
		tcpPortLong = cmd.Int("tcp-port", -1, "TCP ingest port (0 disables)")
		fmtName     = cmd.String("f", "", "Output format: text or json")
		fmtNameLong = cmd.String("format", "", "Output format: text or json")
		token       = cmd.String("k", "", "Require this bearer token")
		tokenLong   = cmd.String("token", "", "Require this bearer token")
		reqRate     = cmd.Int("r", 0, "Per-IP requests per second (0 disables)")
		reqRateLong = cmd.Int("rate", 0, "Per-IP requests per second (0 disables)")
		quiet       = cmd.Bool("q", false, "Print received events only")
		quietLong   = cmd.Bool("quiet", false, "Print received events only")
	)

	cmd.Usage = func() {
		fmt.Fprintln(lc.errOut, "Run a local collector for loggy agents")
		fmt.Fprintln(lc.errOut, "\nUsage: loggy-agent listen [options]")
		fmt.Fprintln(lc.errOut, "\nExamples:")
		fmt.Fprintln(lc.errOut, "  # Accept agents on the default port")
		fmt.Fprintln(lc.errOut, "  loggy-agent listen")
		fmt.Fprintln(lc.errOut, "  ")
		fmt.Fprintln(lc.errOut, "  # Require a token, render as JSON")
		fmt.Fprintln(lc.errOut, "  loggy-agent listen -k s3cret -f json")
		fmt.Fprintln(lc.errOut, "  ")
		fmt.Fprintln(lc.errOut, "  # Accept on all interfaces with a TCP stream port")
		fmt.Fprintln(lc.errOut, "  loggy-agent listen -a 0.0.0.0 -p 1065 -t 1066")
		fmt.Fprintln(lc.errOut, "\nOptions:")
		cmd.PrintDefaults()
	}

	if err := cmd.Parse(args); err != nil {
		return err
	}

	if cmd.NArg() > 0 {
		return fmt.Errorf("unexpected argument(s): %s", strings.Join(cmd.Args(), " "))
	}

	// Merge short and long form values
	finalConfig := coalesceString(*cfgFile, *cfgFileLong)
	finalAddress := coalesceString(*address, *addressLong)
	finalPort := coalesceInt(*port, *portLong, 0)
	finalTCPPort := coalesceInt(*tcpPort, *tcpPortLong, -1)
	finalFormat := coalesceString(*fmtName, *fmtNameLong)
	finalToken := coalesceString(*token, *tokenLong)
	finalRate := coalesceInt(*reqRate, *reqRateLong, 0)
	finalQuiet := coalesceBool(*quiet, *quietLong)

	listenCfg := config.ListenConfig{
		Host:   "127.0.0.1",
		Port:   1065,
		Format: "text",
	}

	// A config file supplies what flags cannot, token hashes and
	// JWT secrets in particular
	if finalConfig != "" {
		os.Setenv("LOGGY_CONFIG_FILE", finalConfig)
		cfg, err := config.LoadWithCLI(nil)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		listenCfg = cfg.Listen
	}

	if finalAddress != "" {
		listenCfg.Host = finalAddress
	}
	if finalPort != 0 {
		listenCfg.Port = finalPort
	}
	if finalTCPPort >= 0 {
		listenCfg.TCPPort = finalTCPPort
	}
	if finalFormat != "" {
		listenCfg.Format = finalFormat
	}
	if finalToken != "" {
		listenCfg.Tokens = append(listenCfg.Tokens, finalToken)
	}
	if finalRate > 0 {
		listenCfg.RateLimit.Rate = float64(finalRate)
	}

	if listenCfg.Port < 1 || listenCfg.Port > 65535 {
		return fmt.Errorf("invalid listen port: %d", listenCfg.Port)
	}

	logger := log.NewLogger()
	var err error
	if finalQuiet {
		err = logger.InitWithDefaults(
			"disable_file=true",
			"enable_stdout=false",
			"level=255")
	} else {
		err = logger.InitWithDefaults(
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stderr",
			fmt.Sprintf("level=%d", int(log.LevelInfo)))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Shutdown(time.Second)

	srv, err := receiver.New(listenCfg, lc.output, logger)
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}

	if !finalQuiet {
		fmt.Fprintf(lc.errOut, "Listening on http://%s:%d/log/<app> (Ctrl+C to stop)\n",
			listenCfg.Host, listenCfg.Port)
		if listenCfg.TCPPort > 0 {
			fmt.Fprintf(lc.errOut, "TCP ingest on %s:%d\n", listenCfg.Host, listenCfg.TCPPort)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	srv.Stop()
	return nil
}

func (lc *ListenCommand) Description() string {
	return "Run a local collector printing received events"
}

func (lc *ListenCommand) Help() string {
	return `Listen Command - Run a local collector for development

Usage:
  loggy-agent listen [options]

Accepts the batches agents POST to /log/<app>, renders each event and
prints it to stdout. A GET /status endpoint reports counters. With a
TCP port configured, newline-delimited JSON streams are accepted too.

Options:
  -c, --config <path>      Config file with a [listen] section
  -a, --address <addr>     Bind address (default: 127.0.0.1)
  -p, --port <port>        HTTP ingest port (default: 1065)
  -t, --tcp-port <port>    TCP ingest port (0 disables)
  -f, --format <name>      Output format: "text" or "json"
  -k, --token <token>      Require this bearer token
  -r, --rate <n>           Per-IP requests per second (0 disables)
  -q, --quiet              Print received events only

Examples:
  # Accept agents on the default port
  loggy-agent listen

  # Require a token, render as JSON
  loggy-agent listen -k s3cret -f json

  # Hashed tokens and JWT verification need a config file
  loggy-agent listen -c collector.toml

Authentication:
  Without tokens, token_hashes or jwt_secret configured, the collector
  accepts unauthenticated requests. That is intended for local use;
  bind to 127.0.0.1 unless authentication is on.
`
}
