// Package config provides configuration structures and loading for GoMutate.
package config

// Config represents the complete application configuration.
type Config struct {
	Schema     string           `yaml:"schema" mapstructure:"schema"`
	Sample     string           `yaml:"sample" mapstructure:"sample"`
	Run        RunConfig        `yaml:"run" mapstructure:"run"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

// RunConfig represents iteration driver settings.
type RunConfig struct {
	Iterations           int     `yaml:"iterations" mapstructure:"iterations"` // 0 = run until interrupted
	Seed                 *int64  `yaml:"seed,omitempty" mapstructure:"seed"`   // nil = derive from time
	GenerationWeight     float64 `yaml:"generation_weight" mapstructure:"generation_weight"`
	ViolationProbability float64 `yaml:"violation_probability" mapstructure:"violation_probability"`
	Workers              int     `yaml:"workers" mapstructure:"workers"`
	QueueSize            int     `yaml:"queue_size" mapstructure:"queue_size"`
}

// SeedValue returns the configured seed and whether one was set at all.
// A zero seed is a valid choice, which is why absence is tracked separately.
func (r RunConfig) SeedValue() (int64, bool) {
	if r.Seed == nil {
		return 0, false
	}
	return *r.Seed, true
}

// ValidationConfig represents sample conformance policy.
type ValidationConfig struct {
	Mode string `yaml:"mode" mapstructure:"mode"` // "strict" aborts on nonconformance, "warn" continues
}

// Strict reports whether sample nonconformance should abort the run.
func (v ValidationConfig) Strict() bool {
	return v.Mode == "strict"
}

// OutputConfig represents payload output settings.
type OutputConfig struct {
	Path       string `yaml:"path" mapstructure:"path"` // empty or "-" writes to stdout
	Provenance bool   `yaml:"provenance" mapstructure:"provenance"`
	Manifest   string `yaml:"manifest" mapstructure:"manifest"` // empty = no manifest sidecar
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Run: RunConfig{
			Iterations:           0,
			GenerationWeight:     0.5,
			ViolationProbability: 0.1,
			Workers:              1,
			QueueSize:            64,
		},
		Validation: ValidationConfig{
			Mode: "warn",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}
