package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestGetConfigFile(t *testing.T) {
	// Save original value and restore after test
	originalCfgFile := cfgFile
	defer func() {
		cfgFile = originalCfgFile
	}()

	tests := []struct {
		name     string
		cfgValue string
		want     string
	}{
		{
			name:     "default config file",
			cfgValue: "",
			want:     "",
		},
		{
			name:     "custom config file",
			cfgValue: "/path/to/custom.yaml",
			want:     "/path/to/custom.yaml",
		},
		{
			name:     "config file with spaces",
			cfgValue: "/path/to/my config.yaml",
			want:     "/path/to/my config.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgFile = tt.cfgValue
			got := GetConfigFile()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetCLIOverrides(t *testing.T) {
	// Save original values and restore after test
	originalLogLevel := logLevel
	originalLogFormat := logFormat
	defer func() {
		logLevel = originalLogLevel
		logFormat = originalLogFormat
	}()

	tests := []struct {
		name      string
		logLevel  string
		logFormat string
		want      CLIOverrides
	}{
		{
			name:      "empty overrides",
			logLevel:  "",
			logFormat: "",
			want: CLIOverrides{
				LogLevel:  "",
				LogFormat: "",
			},
		},
		{
			name:      "all overrides set",
			logLevel:  "debug",
			logFormat: "text",
			want: CLIOverrides{
				LogLevel:  "debug",
				LogFormat: "text",
			},
		},
		{
			name:      "partial overrides",
			logLevel:  "warn",
			logFormat: "",
			want: CLIOverrides{
				LogLevel:  "warn",
				LogFormat: "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logLevel = tt.logLevel
			logFormat = tt.logFormat

			got := GetCLIOverrides()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRootCommandStructure(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "gomutate", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.Equal(t, Version, rootCmd.Version)
}

func TestRootCommandPersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	// Test config flag
	configFlag, err := flags.GetString("config")
	assert.NoError(t, err)
	assert.Equal(t, "gomutate.yaml", configFlag)

	// Test log-level flag
	logLevelFlag, err := flags.GetString("log-level")
	assert.NoError(t, err)
	assert.Equal(t, "", logLevelFlag)

	// Test log-format flag
	logFormatFlag, err := flags.GetString("log-format")
	assert.NoError(t, err)
	assert.Equal(t, "", logFormatFlag)
}

func TestRootCommandSubcommands(t *testing.T) {
	commands := rootCmd.Commands()
	commandNames := make([]string, len(commands))
	for i, cmd := range commands {
		commandNames[i] = cmd.Name()
	}

	expectedCommands := []string{
		"fuzz",
		"validate",
		"operators",
		"plan",
		"version",
	}

	for _, expected := range expectedCommands {
		assert.Contains(t, commandNames, expected, "Expected command %s not found", expected)
	}
}

func TestLoadConfigMissingDefaultFileFallsBackToDefaults(t *testing.T) {
	originalCfgFile := cfgFile
	defer func() {
		cfgFile = originalCfgFile
	}()

	cfgFile = filepath.Join(t.TempDir(), "does-not-exist.yaml")

	// A fresh command has no parsed flags, which models the default-file
	// case: nobody asked for this path explicitly, so a missing file means
	// built-in defaults.
	cfg, err := loadConfig(&cobra.Command{})
	assert.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Run.GenerationWeight)
	assert.Equal(t, "warn", cfg.Validation.Mode)
}

func TestLoadConfigReadsExistingFile(t *testing.T) {
	originalCfgFile := cfgFile
	defer func() {
		cfgFile = originalCfgFile
	}()

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "gomutate.yaml")
	content := `schema: api.schema.json
sample: request.json
run:
  iterations: 250
`
	err := os.WriteFile(path, []byte(content), 0644)
	assert.NoError(t, err)

	cfgFile = path
	cfg, err := loadConfig(&cobra.Command{})
	assert.NoError(t, err)
	assert.Equal(t, "api.schema.json", cfg.Schema)
	assert.Equal(t, "request.json", cfg.Sample)
	assert.Equal(t, 250, cfg.Run.Iterations)
}
