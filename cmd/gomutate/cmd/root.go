package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gomutate/internal/config"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "gomutate",
	Short: "Schema-guided JSON payload fuzzer",
	Long: `A CLI tool for producing security-testing payloads from a JSON Schema
and a known-good sample document, with reproducible output streams.

Features:
  - Mutation engine that disturbs a sample at exactly one location per payload
  - Generation engine that synthesizes documents straight from the schema
  - Operator catalog covering boundary, overflow, injection and structure probes
  - Deterministic runs: same schema, sample and seed give byte-identical output
  - NDJSON output with optional provenance envelopes and a replay manifest`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "gomutate.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel  string
	LogFormat string
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:  logLevel,
		LogFormat: logFormat,
	}
}

// loadConfig loads the configured file. The default config file is optional
// since flags can carry a complete run, but a file named explicitly with
// --config must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile := GetConfigFile()

	if _, err := os.Stat(configFile); err != nil {
		if os.IsNotExist(err) && !cmd.Flags().Changed("config") {
			return config.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return config.Load(configFile)
}
