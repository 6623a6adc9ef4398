package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gomutate/internal/config"
	"github.com/dbsmedya/gomutate/internal/driver"
	"github.com/dbsmedya/gomutate/internal/loader"
	"github.com/dbsmedya/gomutate/internal/logger"
	"github.com/dbsmedya/gomutate/internal/mutator"
	"github.com/dbsmedya/gomutate/internal/writer"
)

var (
	fuzzSchema       string
	fuzzSample       string
	fuzzIterations   int
	fuzzSeed         int64
	fuzzGenWeight    float64
	fuzzViolProb     float64
	fuzzWorkers      int
	fuzzOutput       string
	fuzzProvenance   bool
	fuzzManifest     string
	fuzzStrictSample bool
)

var fuzzCmd = &cobra.Command{
	Use:   "fuzz",
	Short: "Produce fuzzing payloads from a schema and sample",
	Long: `Fuzz emits a stream of JSON payloads derived from a schema and a
known-good sample document.

Each iteration picks a strategy by weight:
  1. Generation synthesizes a fresh document from the schema, optionally
     planting a single constraint violation
  2. Mutation disturbs the sample at exactly one location using a
     vulnerability operator from the catalog

Payloads are written as NDJSON, one document per line. With --provenance
each line is wrapped in an envelope recording the strategy, operator and
mutated path. Given the same schema, sample, seed and settings the stream
is byte-identical, so any payload can be reproduced from the run manifest.

Example:
  gomutate fuzz --schema api.schema.json --sample request.json \
    --iterations 1000 --seed 42 --output payloads.ndjson --manifest run.json`,
	RunE: runFuzz,
}

func init() {
	fuzzCmd.Flags().StringVarP(&fuzzSchema, "schema", "s", "",
		"Path to the JSON Schema file")
	fuzzCmd.Flags().StringVarP(&fuzzSample, "sample", "d", "",
		"Path to the sample document file")
	fuzzCmd.Flags().IntVarP(&fuzzIterations, "iterations", "n", 0,
		"Number of payloads to produce (0 = run until interrupted)")
	fuzzCmd.Flags().Int64Var(&fuzzSeed, "seed", 0,
		"Master seed for the run (omit to derive from time)")
	fuzzCmd.Flags().Float64Var(&fuzzGenWeight, "generation-weight", 0,
		"Chance per iteration of generating instead of mutating [0,1]")
	fuzzCmd.Flags().Float64Var(&fuzzViolProb, "violation-probability", 0,
		"Chance of planting a violation in a generated document [0,1]")
	fuzzCmd.Flags().IntVarP(&fuzzWorkers, "workers", "w", 0,
		"Number of parallel workers")
	fuzzCmd.Flags().StringVarP(&fuzzOutput, "output", "o", "",
		"Output path for payloads (empty or - writes to stdout)")
	fuzzCmd.Flags().BoolVar(&fuzzProvenance, "provenance", false,
		"Wrap each payload in a provenance envelope")
	fuzzCmd.Flags().StringVar(&fuzzManifest, "manifest", "",
		"Write a replay manifest to this path when the run completes")
	fuzzCmd.Flags().BoolVar(&fuzzStrictSample, "strict-sample", false,
		"Abort when the sample does not conform to the schema")

	rootCmd.AddCommand(fuzzCmd)
}

func runFuzz(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply CLI overrides
	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat)
	applyFuzzFlags(cmd, cfg)

	if cfg.Schema == "" {
		return fmt.Errorf("no schema given (use --schema or the config file)")
	}
	if cfg.Sample == "" {
		return fmt.Errorf("no sample given (use --sample or the config file)")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Infow("Starting fuzz run",
		"schema", cfg.Schema,
		"sample", cfg.Sample,
	)

	// Load inputs
	node, err := loader.LoadSchema(cfg.Schema)
	if err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}
	doc, err := loader.LoadSample(cfg.Sample)
	if err != nil {
		return fmt.Errorf("failed to load sample: %w", err)
	}

	// Check sample conformance. Strict mode aborts; the default warns and
	// continues, since a slightly stale sample still mutates fine.
	report := node.Validate(doc)
	if !report.Conformant() {
		if cfg.Validation.Strict() {
			return fmt.Errorf("sample does not conform to schema:\n%s", report)
		}
		log.Warnw("Sample does not conform to schema - continuing",
			"violations", len(report.Violations),
		)
		for _, v := range report.Violations {
			log.Warnw("Sample violation", "path", v.Path, "reason", v.Message)
		}
	}

	sample := mutator.Bind(node, doc)

	// Create driver
	seed, seedSet := cfg.Run.SeedValue()
	drv, err := driver.New(node, sample, driver.Options{
		Iterations:           cfg.Run.Iterations,
		Seed:                 seed,
		SeedSet:              seedSet,
		GenerationWeight:     cfg.Run.GenerationWeight,
		ViolationProbability: cfg.Run.ViolationProbability,
		Workers:              cfg.Run.Workers,
		QueueSize:            cfg.Run.QueueSize,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}

	// Create output writer
	out, err := writer.Create(cfg.Output.Path, cfg.Output.Provenance)
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}
	defer out.Close()

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Warn("Received shutdown signal - stopping after current record...")
		cancel()
	}()

	// Run
	startedAt := time.Now()
	if cfg.Run.Workers > 1 {
		for rec := range drv.Start(ctx) {
			if err := out.Write(rec); err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}
		}
		if err := drv.Err(); err != nil {
			return fmt.Errorf("fuzz run failed: %w", err)
		}
	} else {
		stream := drv.Stream(ctx)
		for {
			rec, ok := stream.Next()
			if !ok {
				break
			}
			if err := out.Write(rec); err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}
		}
		if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("fuzz run failed: %w", err)
		}
	}
	if ctx.Err() != nil {
		log.Warn("Fuzz run cancelled by user")
	}

	if err := out.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	completedAt := time.Now()

	// Write replay manifest
	if cfg.Output.Manifest != "" {
		m := writer.Manifest{
			RunID:                drv.RunID(),
			Seed:                 drv.Seed(),
			Iterations:           cfg.Run.Iterations,
			GenerationWeight:     cfg.Run.GenerationWeight,
			ViolationProbability: cfg.Run.ViolationProbability,
			Workers:              cfg.Run.Workers,
			SchemaPath:           cfg.Schema,
			SamplePath:           cfg.Sample,
			Records:              out.Records(),
			StartedAt:            startedAt,
			CompletedAt:          completedAt,
		}
		if err := writer.WriteManifest(cfg.Output.Manifest, m); err != nil {
			return fmt.Errorf("failed to write manifest: %w", err)
		}
	}

	// Display results. The summary goes to stderr when payloads went to
	// stdout, so the NDJSON stream stays clean.
	summary := cmd.OutOrStdout()
	if cfg.Output.Path == "" || cfg.Output.Path == "-" {
		summary = cmd.ErrOrStderr()
	}
	fmt.Fprintf(summary, "\n=== Fuzz Complete ===\n")
	fmt.Fprintf(summary, "Run ID: %s\n", drv.RunID())
	fmt.Fprintf(summary, "Seed: %d\n", drv.Seed())
	fmt.Fprintf(summary, "Records: %d\n", out.Records())
	fmt.Fprintf(summary, "Duration: %s\n", completedAt.Sub(startedAt).Round(time.Millisecond))
	if cfg.Output.Path != "" && cfg.Output.Path != "-" {
		fmt.Fprintf(summary, "Output: %s\n", cfg.Output.Path)
	}
	if cfg.Output.Manifest != "" {
		fmt.Fprintf(summary, "Manifest: %s\n", cfg.Output.Manifest)
	}

	return nil
}

// applyFuzzFlags copies explicitly set fuzz flags over the loaded config.
// Changed is checked instead of comparing against zero values because zero
// is a legitimate setting for most of these (seed 0, weight 0, unbounded
// iterations).
func applyFuzzFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("schema") {
		cfg.Schema = fuzzSchema
	}
	if flags.Changed("sample") {
		cfg.Sample = fuzzSample
	}
	if flags.Changed("iterations") {
		cfg.Run.Iterations = fuzzIterations
	}
	if flags.Changed("seed") {
		seed := fuzzSeed
		cfg.Run.Seed = &seed
	}
	if flags.Changed("generation-weight") {
		cfg.Run.GenerationWeight = fuzzGenWeight
	}
	if flags.Changed("violation-probability") {
		cfg.Run.ViolationProbability = fuzzViolProb
	}
	if flags.Changed("workers") {
		cfg.Run.Workers = fuzzWorkers
	}
	if flags.Changed("output") {
		cfg.Output.Path = fuzzOutput
	}
	if flags.Changed("provenance") {
		cfg.Output.Provenance = fuzzProvenance
	}
	if flags.Changed("manifest") {
		cfg.Output.Manifest = fuzzManifest
	}
	if flags.Changed("strict-sample") && fuzzStrictSample {
		cfg.Validation.Mode = "strict"
	}
}
