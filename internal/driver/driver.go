// Package driver coordinates the generation and mutation engines into a
// reproducible stream of fuzzing payloads. Each iteration picks a strategy
// by weight, produces one document and stamps it with provenance; given the
// same schema, sample and seed, a fresh driver reproduces the exact same
// sequence byte for byte.
package driver

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dbsmedya/gomutate/internal/catalog"
	"github.com/dbsmedya/gomutate/internal/generator"
	"github.com/dbsmedya/gomutate/internal/logger"
	"github.com/dbsmedya/gomutate/internal/mutator"
	"github.com/dbsmedya/gomutate/internal/schema"
)

// defaultQueueSize bounds the record channel in scaled mode when the caller
// did not size it.
const defaultQueueSize = 64

// Strategy names how a record was produced.
type Strategy string

const (
	// StrategyGeneration marks documents synthesized from the schema.
	StrategyGeneration Strategy = "generation"
	// StrategyMutation marks documents derived from the sample.
	StrategyMutation Strategy = "mutation"
)

// Record is one produced payload together with its provenance. Records are
// immutable once produced; in scaled mode Index carries the global iteration
// number so consumers can reassemble order across workers.
type Record struct {
	Index    uint64
	Document interface{}
	Strategy Strategy
	// Operator and Path are set for mutation records only.
	Operator string
	Path     string
	Worker   int
}

// Options tune a run.
type Options struct {
	// Iterations bounds the run; 0 means run until the context is
	// cancelled.
	Iterations int
	// Seed is the master seed. It is only honored when SeedSet is true,
	// since zero is a legitimate seed; otherwise a seed is derived from
	// the clock and logged for replay.
	Seed    int64
	SeedSet bool
	// GenerationWeight is the per-iteration chance of generating from the
	// schema instead of mutating the sample. Must be within [0,1].
	GenerationWeight float64
	// ViolationProbability is handed to the generation engine.
	ViolationProbability float64
	// Workers and QueueSize only matter for Start; Stream ignores them.
	Workers   int
	QueueSize int
}

// Driver owns the run identity and the two engines. It holds no per-stream
// state, so Stream and Start can each be called any number of times and
// every call replays the same sequence.
type Driver struct {
	schemaNode *schema.Node
	sample     *mutator.Sample
	gen        *generator.Generator
	mut        *mutator.Mutator
	opts       Options
	seed       int64
	runID      string
	logger     *logger.Logger

	mu  sync.Mutex
	err error
}

// New builds a Driver over a parsed schema and a bound sample. A nil logger
// falls back to the default logger.
func New(node *schema.Node, sample *mutator.Sample, opts Options, log *logger.Logger) (*Driver, error) {
	if node == nil {
		return nil, fmt.Errorf("schema is nil")
	}
	if sample == nil {
		return nil, fmt.Errorf("sample is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}

	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = defaultQueueSize
	}

	seed := opts.Seed
	seedSource := "configured"
	if !opts.SeedSet {
		seed = time.Now().UnixNano()
		seedSource = "derived"
	}

	runID := uuid.NewString()
	log = log.WithRun(runID)

	reg := catalog.NewRegistry()
	genOpts := generator.DefaultOptions()
	genOpts.ViolationProbability = opts.ViolationProbability

	d := &Driver{
		schemaNode: node,
		sample:     sample,
		gen:        generator.New(reg, genOpts),
		mut:        mutator.New(reg),
		opts:       opts,
		seed:       seed,
		runID:      runID,
		logger:     log,
	}

	log.Infow("Iteration driver ready",
		"seed", seed,
		"seed_source", seedSource,
		"iterations", opts.Iterations,
		"generation_weight", opts.GenerationWeight,
		"violation_probability", opts.ViolationProbability,
		"workers", opts.Workers,
	)

	return d, nil
}

// RunID returns the unique identifier of this run.
func (d *Driver) RunID() string {
	return d.runID
}

// Seed returns the effective master seed, whether configured or derived.
func (d *Driver) Seed() int64 {
	return d.seed
}

// Err returns the first failure any producer hit, nil for clean runs. In
// scaled mode it is settled once the record channel has closed.
func (d *Driver) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func (d *Driver) fail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err == nil {
		d.err = err
	}
}

// produce builds the record for one iteration. The strategy flip consumes
// one draw from rng before the chosen engine runs, which keeps the sequence
// stable regardless of which branch is taken.
func (d *Driver) produce(index uint64, worker int, rng *rand.Rand) (Record, error) {
	if rng.Float64() < d.opts.GenerationWeight {
		doc := d.gen.Generate(d.schemaNode, rng)
		return Record{
			Index:    index,
			Document: doc,
			Strategy: StrategyGeneration,
			Worker:   worker,
		}, nil
	}

	mut, err := d.mut.Mutate(d.sample, rng)
	if err != nil {
		return Record{}, fmt.Errorf("mutate iteration %d: %w", index, err)
	}
	return Record{
		Index:    index,
		Document: mut.Document,
		Strategy: StrategyMutation,
		Operator: mut.Operator,
		Path:     mut.Path.String(),
		Worker:   worker,
	}, nil
}
