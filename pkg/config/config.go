// Package config provides the configuration structure for solvtrace history
// recorders.
//
// The configuration is a plain struct organized into logical sections:
//   - Columns: which built-in columns are auto-registered
//   - Output: where the printed iteration table is written
//   - Snapshot: how history snapshots are persisted
//   - Observability: Prometheus metrics toggle
//
// Example usage:
//
//	cfg := config.New("newton-solve")
//	cfg.Columns.IncludeTime = false
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Compression modes for persisted snapshots.
const (
	CompressionNone = "none"
	CompressionZstd = "zstd"
)

// Config is the configuration structure for a history recorder.
type Config struct {
	// Name identifies the recorder instance, used for metric labels
	Name string `yaml:"name" json:"name"`

	// Columns controls the built-in auto-registered columns
	Columns ColumnsConfig `yaml:"columns" json:"columns"`

	// Output controls the printed iteration table
	Output OutputConfig `yaml:"output" json:"output"`

	// Snapshot controls snapshot persistence
	Snapshot SnapshotConfig `yaml:"snapshot" json:"snapshot"`

	// Observability controls metrics collection
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// ColumnsConfig controls the built-in iteration and timing columns.
type ColumnsConfig struct {
	// IncludeIter auto-registers an "Iter" column populated with the
	// iteration counter
	IncludeIter bool `yaml:"include_iter" json:"include_iter"`
	// IncludeTime auto-registers a "Time" column populated with elapsed
	// wall-clock seconds
	IncludeTime bool `yaml:"include_time" json:"include_time"`
}

// OutputConfig controls where printed tables go.
type OutputConfig struct {
	// Writer receives printHeader/printData output. Defaults to
	// os.Stdout. Not serializable; set programmatically.
	Writer io.Writer `yaml:"-" json:"-"`
}

// SnapshotConfig controls snapshot persistence.
type SnapshotConfig struct {
	// Compression selects the snapshot compression mode: "zstd" or "none"
	Compression string `yaml:"compression" json:"compression"`
}

// ObservabilityConfig controls metrics collection.
type ObservabilityConfig struct {
	// EnableMetrics turns on Prometheus counters for this recorder
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics"`
}

// New returns a Config with production defaults.
func New(name string) *Config {
	return &Config{
		Name: name,
		Columns: ColumnsConfig{
			IncludeIter: true,
			IncludeTime: true,
		},
		Output: OutputConfig{
			Writer: os.Stdout,
		},
		Snapshot: SnapshotConfig{
			Compression: CompressionZstd,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config: name is required")
	}
	switch c.Snapshot.Compression {
	case "", CompressionNone, CompressionZstd:
	default:
		return fmt.Errorf("config: unknown snapshot compression %q", c.Snapshot.Compression)
	}
	return nil
}

// FromYAML parses a Config from YAML bytes, applying defaults for any
// section not present, and validates the result.
func FromYAML(data []byte) (*Config, error) {
	cfg := New("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse yaml: %w", err)
	}
	if cfg.Output.Writer == nil {
		cfg.Output.Writer = os.Stdout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
