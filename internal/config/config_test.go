package config

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Run.Iterations != 0 {
		t.Errorf("expected default iterations 0 (unbounded), got %d", cfg.Run.Iterations)
	}
	if cfg.Run.Seed != nil {
		t.Errorf("expected no default seed, got %d", *cfg.Run.Seed)
	}
	if cfg.Run.GenerationWeight != 0.5 {
		t.Errorf("expected default generation_weight 0.5, got %f", cfg.Run.GenerationWeight)
	}
	if cfg.Run.ViolationProbability != 0.1 {
		t.Errorf("expected default violation_probability 0.1, got %f", cfg.Run.ViolationProbability)
	}
	if cfg.Run.Workers != 1 {
		t.Errorf("expected default workers 1, got %d", cfg.Run.Workers)
	}
	if cfg.Run.QueueSize != 64 {
		t.Errorf("expected default queue_size 64, got %d", cfg.Run.QueueSize)
	}
	if cfg.Validation.Mode != "warn" {
		t.Errorf("expected default validation mode 'warn', got %s", cfg.Validation.Mode)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected default log format 'json', got %s", cfg.Logging.Format)
	}
}

func TestSeedValue(t *testing.T) {
	var run RunConfig
	if _, set := run.SeedValue(); set {
		t.Error("expected unset seed to report set=false")
	}

	zero := int64(0)
	run.Seed = &zero
	seed, set := run.SeedValue()
	if !set {
		t.Error("expected explicit zero seed to report set=true")
	}
	if seed != 0 {
		t.Errorf("expected seed 0, got %d", seed)
	}
}

func TestValidationModeStrict(t *testing.T) {
	if (ValidationConfig{Mode: "warn"}).Strict() {
		t.Error("warn mode must not be strict")
	}
	if !(ValidationConfig{Mode: "strict"}).Strict() {
		t.Error("strict mode must be strict")
	}
}
