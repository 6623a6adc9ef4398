package writer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/natefinch/atomic"
)

// Manifest is the replay sidecar for a completed run. Together with the
// schema and sample files it pins down everything needed to reproduce the
// exact output.
type Manifest struct {
	RunID                string    `json:"run_id"`
	Seed                 int64     `json:"seed"`
	Iterations           int       `json:"iterations"`
	GenerationWeight     float64   `json:"generation_weight"`
	ViolationProbability float64   `json:"violation_probability"`
	Workers              int       `json:"workers"`
	SchemaPath           string    `json:"schema"`
	SamplePath           string    `json:"sample"`
	Records              uint64    `json:"records"`
	StartedAt            time.Time `json:"started_at"`
	CompletedAt          time.Time `json:"completed_at"`
	Duration             string    `json:"duration"`
}

// WriteManifest writes the manifest to path atomically, so a crash mid-write
// never leaves a torn sidecar next to a finished run. An empty Duration is
// filled in from the timestamps.
func WriteManifest(path string, m Manifest) error {
	if m.Duration == "" {
		m.Duration = m.CompletedAt.Sub(m.StartedAt).String()
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	data = append(data, '\n')

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}
