package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/denull/loggy-agent/src/cmd/loggy-agent/commands"
	"github.com/denull/loggy-agent/src/internal/config"
	"github.com/denull/loggy-agent/src/internal/version"

	"github.com/lixenwraith/log"
)

var logger *log.Logger

func main() {
	// Subcommands run before any agent initialization
	router := commands.NewCommandRouter()
	handled, err := router.Route(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if handled {
		os.Exit(0)
	}

	flagCfg, err := ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	InitOutputHandler(flagCfg.Quiet)

	if flagCfg.ShowVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	if flagCfg.ConfigFile != "" {
		os.Setenv("LOGGY_CONFIG_FILE", flagCfg.ConfigFile)
	}

	cfg, err := config.LoadWithCLI(os.Args[1:])
	if err != nil {
		if flagCfg.ConfigFile != "" && strings.Contains(err.Error(), "not found") {
			FatalError(2, "Config file not found: %s\n", flagCfg.ConfigFile)
		}
		FatalError(1, "Failed to load config: %v\n", err)
	}

	applyFlagOverrides(cfg, flagCfg)

	if err := initializeLogger(cfg); err != nil {
		FatalError(1, "Failed to initialize logger: %v\n", err)
	}
	defer shutdownLogger()

	logger.Info("msg", "Loggy agent starting",
		"version", version.String(),
		"app", cfg.App,
		"config_file", flagCfg.ConfigFile)

	agent, err := buildAgent(cfg)
	if err != nil {
		logger.Error("msg", "Failed to build agent", "error", err)
		FatalError(1, "Failed to build agent: %v\n", err)
	}

	agent.Start()

	statusCtx, statusCancel := context.WithCancel(context.Background())
	defer statusCancel()
	go statusReporter(statusCtx, agent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-sigChan:
		logger.Info("msg", "Shutdown signal received", "signal", sig.String())
		if s, ok := sig.(syscall.Signal); ok {
			exitCode = 128 + int(s)
		}
	case <-agent.Done():
		logger.Info("msg", "Input exhausted, shutting down")
	}

	agent.Shutdown(exitCode)
	os.Exit(exitCode)
}

func shutdownLogger() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			// Best effort - can't log the shutdown error
			Error("Logger shutdown error: %v\n", err)
		}
	}
}
