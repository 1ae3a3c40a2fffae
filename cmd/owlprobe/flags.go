package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// CLIConfig holds command-line configuration for owlprobe.
type CLIConfig struct {
	ConfigPath  string
	Role        string
	Timeout     time.Duration
	LogLevel    string
	LogFormat   string
	ShowVersion bool
	ShowHelp    bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("OWLPROBE_CONFIG", "owlprobe.yaml"),
		"Path to configuration file (env: OWLPROBE_CONFIG)")

	flag.StringVar(&cfg.Role, "role",
		getEnv("OWLPROBE_ROLE", "all"),
		"Role to probe: all, sensor, solver, worldmodel (env: OWLPROBE_ROLE)")

	flag.DurationVar(&cfg.Timeout, "timeout",
		10*time.Second,
		"Per-probe round-trip timeout")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("OWLPROBE_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: OWLPROBE_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("OWLPROBE_LOG_FORMAT", "text"),
		"Log format: json, text (env: OWLPROBE_LOG_FORMAT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")

	flag.Usage = printHelp
	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}
	switch cfg.Role {
	case "all", "sensor", "solver", "worldmodel":
	default:
		return fmt.Errorf("invalid role: %s", cfg.Role)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}
	return nil
}

func printHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `owlprobe - exercise the GRAIL/OWL wire protocols end to end

Usage: %s [options]

Options:
`, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Probe every configured role once
  %s --config=owlprobe.yaml

  # Probe only the aggregator-to-solver link
  %s --role=solver --config=owlprobe.yaml

Version: %s
`, os.Args[0], os.Args[0], Version)
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
