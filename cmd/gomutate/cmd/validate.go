package cmd

import (
	"fmt"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/gomutate/internal/loader"
)

var (
	validateSchema string
	validateSample string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a sample document against its schema",
	Long: `Validate checks that the inputs of a fuzz run are usable before any
payload is produced.

Checks performed:
  - Configuration values are in range
  - Schema parses and uses supported keywords only
  - Sample decodes as JSON (comments and trailing commas accepted)
  - Sample conforms to the schema, with every violation reported by path

The command exits non-zero when the sample does not conform, so it can
gate CI pipelines that keep schemas and fixtures in sync.

Example:
  gomutate validate --schema api.schema.json --sample request.json`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", "",
		"Path to the JSON Schema file")
	validateCmd.Flags().StringVarP(&validateSample, "sample", "d", "",
		"Path to the sample document file")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply CLI overrides
	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat)

	flags := cmd.Flags()
	if flags.Changed("schema") {
		cfg.Schema = validateSchema
	}
	if flags.Changed("sample") {
		cfg.Sample = validateSample
	}

	if cfg.Schema == "" {
		return fmt.Errorf("no schema given (use --schema or the config file)")
	}
	if cfg.Sample == "" {
		return fmt.Errorf("no sample given (use --sample or the config file)")
	}

	cmd.Printf("\n=== Input Validation ===\n")
	cmd.Printf("Schema: %s\n", cfg.Schema)
	cmd.Printf("Sample: %s\n\n", cfg.Sample)

	if err := cfg.Validate(); err != nil {
		cmd.Printf("❌ Configuration invalid: %v\n", err)
		return fmt.Errorf("validation failed")
	}
	cmd.Printf("✅ Configuration values in range\n")

	node, err := loader.LoadSchema(cfg.Schema)
	if err != nil {
		cmd.Printf("❌ Schema rejected: %v\n", err)
		return fmt.Errorf("validation failed")
	}
	cmd.Printf("✅ Schema parsed, all keywords supported\n")

	doc, err := loader.LoadSample(cfg.Sample)
	if err != nil {
		cmd.Printf("❌ Sample rejected: %v\n", err)
		return fmt.Errorf("validation failed")
	}
	cmd.Printf("✅ Sample decoded\n")

	report := node.Validate(doc)
	if !report.Conformant() {
		cmd.Printf("❌ Sample violates the schema at %d location(s):\n", len(report.Violations))
		for _, v := range report.Violations {
			cmd.Printf("   - %s\n", v)
		}
		cmd.Printf("\nResult: %s\n", color.Red.Render("FAIL"))
		return fmt.Errorf("sample does not conform to schema (%d violations)", len(report.Violations))
	}
	cmd.Printf("✅ Sample conforms to the schema\n")

	cmd.Printf("\nResult: %s\n", color.Green.Render("PASS"))
	return nil
}
