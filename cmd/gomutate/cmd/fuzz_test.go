package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/gomutate/internal/writer"
)

func TestFuzzCommandStructure(t *testing.T) {
	assert.NotNil(t, fuzzCmd)
	assert.Equal(t, "fuzz", fuzzCmd.Use)
	assert.NotEmpty(t, fuzzCmd.Short)
	assert.NotEmpty(t, fuzzCmd.Long)
	assert.NotNil(t, fuzzCmd.RunE)
}

func TestFuzzCommandFlags(t *testing.T) {
	flags := fuzzCmd.Flags()

	for _, name := range []string{
		"schema", "sample", "iterations", "seed",
		"generation-weight", "violation-probability",
		"workers", "output", "provenance", "manifest", "strict-sample",
	} {
		assert.NotNil(t, flags.Lookup(name), "flag %s should exist", name)
	}

	schemaFlag := flags.Lookup("schema")
	assert.Equal(t, "s", schemaFlag.Shorthand)
	assert.Equal(t, "", schemaFlag.DefValue)

	sampleFlag := flags.Lookup("sample")
	assert.Equal(t, "d", sampleFlag.Shorthand)

	iterFlag := flags.Lookup("iterations")
	assert.Equal(t, "n", iterFlag.Shorthand)
	assert.Equal(t, "0", iterFlag.DefValue)
}

func TestFuzzIsAddedToRoot(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "fuzz" {
			found = true
			break
		}
	}
	assert.True(t, found, "fuzz command should be added to root command")
}

func TestFuzzCommandExample(t *testing.T) {
	// Verify the command has example usage documentation
	assert.Contains(t, fuzzCmd.Long, "Example:")
	assert.Contains(t, fuzzCmd.Long, "gomutate fuzz")
}

// ============================================================================
// CLI Execution Tests
// ============================================================================

const cliTestSchema = `{
  "type": "object",
  "properties": {
    "name": {"type": "string", "minLength": 1, "maxLength": 32},
    "age": {"type": "integer", "minimum": 0, "maximum": 120}
  },
  "required": ["name", "age"]
}`

const cliTestSample = `{"name": "ada", "age": 30}`

// writeFuzzInputs writes a schema, sample and quiet config into a fresh temp
// dir and returns their paths.
func writeFuzzInputs(t *testing.T) (schemaPath, samplePath, configPath string) {
	t.Helper()

	tmpDir := t.TempDir()
	schemaPath = filepath.Join(tmpDir, "schema.json")
	samplePath = filepath.Join(tmpDir, "sample.json")
	configPath = filepath.Join(tmpDir, "gomutate.yaml")

	require.NoError(t, os.WriteFile(schemaPath, []byte(cliTestSchema), 0644))
	require.NoError(t, os.WriteFile(samplePath, []byte(cliTestSample), 0644))

	configContent := "logging:\n  level: error\n  output: " +
		filepath.Join(tmpDir, "run.log") + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	return schemaPath, samplePath, configPath
}

// restoreCommandState snapshots the package-level flag variables that
// rootCmd.Execute mutates and restores them when the test finishes.
func restoreCommandState(t *testing.T) {
	t.Helper()

	origCfgFile := cfgFile
	origLogLevel := logLevel
	origLogFormat := logFormat
	origSchema := fuzzSchema
	origSample := fuzzSample
	origIterations := fuzzIterations
	origSeed := fuzzSeed
	origGenWeight := fuzzGenWeight
	origViolProb := fuzzViolProb
	origWorkers := fuzzWorkers
	origOutput := fuzzOutput
	origProvenance := fuzzProvenance
	origManifest := fuzzManifest
	origStrict := fuzzStrictSample
	origValidateSchema := validateSchema
	origValidateSample := validateSample
	origPlanSchema := planSchema
	origPlanSample := planSample
	origOperatorsType := operatorsType
	origOperatorsClass := operatorsClass

	// rootCmd.Execute also marks parsed flags as Changed on the shared
	// command tree, and that state persists across Execute calls within
	// the test binary; snapshot it alongside the variables.
	flagChanged := make(map[*pflag.Flag]bool)
	snapshotChanged := func(f *pflag.Flag) { flagChanged[f] = f.Changed }
	rootCmd.PersistentFlags().VisitAll(snapshotChanged)
	rootCmd.Flags().VisitAll(snapshotChanged)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(snapshotChanged)
	}

	t.Cleanup(func() {
		cfgFile = origCfgFile
		logLevel = origLogLevel
		logFormat = origLogFormat
		fuzzSchema = origSchema
		fuzzSample = origSample
		fuzzIterations = origIterations
		fuzzSeed = origSeed
		fuzzGenWeight = origGenWeight
		fuzzViolProb = origViolProb
		fuzzWorkers = origWorkers
		fuzzOutput = origOutput
		fuzzProvenance = origProvenance
		fuzzManifest = origManifest
		fuzzStrictSample = origStrict
		validateSchema = origValidateSchema
		validateSample = origValidateSample
		planSchema = origPlanSchema
		planSample = origPlanSample
		operatorsType = origOperatorsType
		operatorsClass = origOperatorsClass
		for f, changed := range flagChanged {
			f.Changed = changed
		}
		rootCmd.SetArgs(nil)
	})
}

// TestFuzzCmd_Execute_EmptySchemaPath tests execution with a blank schema path
func TestFuzzCmd_Execute_EmptySchemaPath(t *testing.T) {
	restoreCommandState(t)

	_, samplePath, configPath := writeFuzzInputs(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)

	rootCmd.SetArgs([]string{"fuzz", "--config", configPath,
		"--schema", "", "--sample", samplePath})
	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no schema")
}

// TestFuzzCmd_Execute_MissingConfig tests execution when an explicitly named
// config file doesn't exist
func TestFuzzCmd_Execute_MissingConfig(t *testing.T) {
	restoreCommandState(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)

	rootCmd.SetArgs([]string{"fuzz", "--config", "/tmp/nonexistent_gomutate_config.yaml",
		"--schema", "schema.json", "--sample", "sample.json"})
	err := rootCmd.Execute()
	assert.Error(t, err)
}

// TestFuzzCmd_Execute_WritesDeterministicPayloads runs the same seeded fuzz
// twice and expects byte-identical payload streams.
func TestFuzzCmd_Execute_WritesDeterministicPayloads(t *testing.T) {
	restoreCommandState(t)

	schemaPath, samplePath, configPath := writeFuzzInputs(t)
	tmpDir := t.TempDir()
	out1 := filepath.Join(tmpDir, "payloads1.ndjson")
	out2 := filepath.Join(tmpDir, "payloads2.ndjson")
	manifestPath := filepath.Join(tmpDir, "run.json")

	baseArgs := []string{"fuzz",
		"--config", configPath,
		"--schema", schemaPath,
		"--sample", samplePath,
		"--iterations", "8",
		"--seed", "42",
		"--generation-weight", "0.5",
		"--violation-probability", "0.25",
		"--workers", "1",
		"--provenance",
	}

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)

	rootCmd.SetArgs(append(baseArgs, "--output", out1, "--manifest", manifestPath))
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs(append(baseArgs, "--output", out2, "--manifest", filepath.Join(tmpDir, "run2.json")))
	require.NoError(t, rootCmd.Execute())

	data1, err := os.ReadFile(out1)
	require.NoError(t, err)
	data2, err := os.ReadFile(out2)
	require.NoError(t, err)
	assert.Equal(t, data1, data2, "same seed should produce byte-identical payloads")

	// One envelope per line, indexed in order
	lines := strings.Split(strings.TrimSpace(string(data1)), "\n")
	assert.Len(t, lines, 8)
	for i, line := range lines {
		var env map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &env), "line %d should be valid JSON", i)
		assert.Equal(t, float64(i), env["index"])
		assert.Contains(t, env, "strategy")
		assert.Contains(t, env, "document")
	}

	// Manifest pins the run down for replay
	manifestData, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	var m writer.Manifest
	require.NoError(t, json.Unmarshal(manifestData, &m))
	assert.Equal(t, int64(42), m.Seed)
	assert.Equal(t, 8, m.Iterations)
	assert.Equal(t, uint64(8), m.Records)
	assert.Equal(t, 1, m.Workers)
	assert.Equal(t, schemaPath, m.SchemaPath)
	assert.Equal(t, samplePath, m.SamplePath)
	assert.NotEmpty(t, m.RunID)

	// Summary goes to the command writer since payloads went to a file
	assert.Contains(t, buf.String(), "=== Fuzz Complete ===")
	assert.Contains(t, buf.String(), "Seed: 42")
}

// TestFuzzCmd_Execute_ParallelWorkersCoverAllIndexes checks that the scaled
// path emits every iteration index exactly once.
func TestFuzzCmd_Execute_ParallelWorkersCoverAllIndexes(t *testing.T) {
	restoreCommandState(t)

	schemaPath, samplePath, configPath := writeFuzzInputs(t)
	outPath := filepath.Join(t.TempDir(), "payloads.ndjson")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)

	rootCmd.SetArgs([]string{"fuzz",
		"--config", configPath,
		"--schema", schemaPath,
		"--sample", samplePath,
		"--iterations", "9",
		"--seed", "7",
		"--workers", "3",
		"--provenance",
		"--output", outPath,
	})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 9)

	seen := make(map[uint64]bool)
	for _, line := range lines {
		var env map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &env))
		seen[uint64(env["index"].(float64))] = true
	}
	for i := uint64(0); i < 9; i++ {
		assert.True(t, seen[i], "index %d should be present", i)
	}
}

// TestFuzzCmd_Execute_StrictSampleAborts tests that strict mode refuses a
// nonconforming sample.
func TestFuzzCmd_Execute_StrictSampleAborts(t *testing.T) {
	restoreCommandState(t)

	schemaPath, _, configPath := writeFuzzInputs(t)
	tmpDir := t.TempDir()
	badSample := filepath.Join(tmpDir, "bad.json")
	require.NoError(t, os.WriteFile(badSample, []byte(`{"name": "ada"}`), 0644))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)

	rootCmd.SetArgs([]string{"fuzz",
		"--config", configPath,
		"--schema", schemaPath,
		"--sample", badSample,
		"--iterations", "2",
		"--seed", "1",
		"--strict-sample",
		"--output", filepath.Join(tmpDir, "out.ndjson"),
	})
	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "does not conform")
}

// TestFuzzCmd_Execute_WarnModeContinuesOnNonconformingSample tests the
// default policy: log and keep going.
func TestFuzzCmd_Execute_WarnModeContinuesOnNonconformingSample(t *testing.T) {
	restoreCommandState(t)

	schemaPath, _, configPath := writeFuzzInputs(t)
	tmpDir := t.TempDir()
	badSample := filepath.Join(tmpDir, "bad.json")
	require.NoError(t, os.WriteFile(badSample, []byte(`{"name": "ada"}`), 0644))
	outPath := filepath.Join(tmpDir, "out.ndjson")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)

	rootCmd.SetArgs([]string{"fuzz",
		"--config", configPath,
		"--schema", schemaPath,
		"--sample", badSample,
		"--iterations", "2",
		"--seed", "1",
		"--workers", "1",
		"--output", outPath,
	})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)
}
