package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lconfig "github.com/lixenwraith/config"
)

func defaults() *Config {
	return &Config{
		ExitOnFatal: true,
		Remote: RemoteConfig{
			Endpoint:  "http://127.0.0.1:1065/",
			Transport: "http",
			TimeoutMS: 10000,
		},
		Throttle: ThrottleConfig{
			IntervalMS: 100,
			Limit:      1000,
		},
		Console: ConsoleConfig{
			Enabled: true,
			Target:  "stdout",
			Format:  "text",
		},
		Logging: DefaultLogConfig(),
		Listen: ListenConfig{
			Host:   "127.0.0.1",
			Port:   1065,
			Format: "text",
		},
	}
}

func LoadWithCLI(cliArgs []string) (*Config, error) {
	configPath := GetConfigPath()

	cfg, err := lconfig.NewBuilder().
		WithDefaults(defaults()).
		WithEnvPrefix("LOGGY_").
		WithFile(configPath).
		WithArgs(cliArgs).
		WithEnvTransform(customEnvTransform).
		WithSources(
			lconfig.SourceCLI,
			lconfig.SourceEnv,
			lconfig.SourceFile,
			lconfig.SourceDefault,
		).
		Build()

	if err != nil {
		if !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	finalConfig := &Config{}
	if err := cfg.Scan("", finalConfig); err != nil {
		return nil, fmt.Errorf("failed to scan config: %w", err)
	}

	return finalConfig, finalConfig.validate()
}

func customEnvTransform(path string) string {
	env := strings.ReplaceAll(path, ".", "_")
	env = strings.ToUpper(env)
	env = "LOGGY_" + env
	return env
}

func GetConfigPath() string {
	if configFile := os.Getenv("LOGGY_CONFIG_FILE"); configFile != "" {
		if filepath.IsAbs(configFile) {
			return configFile
		}
		if configDir := os.Getenv("LOGGY_CONFIG_DIR"); configDir != "" {
			return filepath.Join(configDir, configFile)
		}
		return configFile
	}

	if configDir := os.Getenv("LOGGY_CONFIG_DIR"); configDir != "" {
		return filepath.Join(configDir, "loggy.toml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "loggy.toml")
	}

	return "loggy.toml"
}
