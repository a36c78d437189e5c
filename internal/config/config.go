// Package config provides configuration management for the spatial index.
// It handles loading, validation, and defaulting of index settings from
// files and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SpanningPolicy controls how bounded entities spread across cells
type SpanningPolicy string

const (
	// SpanningNone stores a bounded entity only at its position cell
	SpanningNone SpanningPolicy = "none"
	// SpanningPerLevelCap spans bounded entities up to MaxSpanCells cells
	SpanningPerLevelCap SpanningPolicy = "per-level-cap"
	// SpanningAlways spans bounded entities across every intersecting cell
	SpanningAlways SpanningPolicy = "always"
)

// SubdivisionStrategy selects how eagerly nodes split and merge
type SubdivisionStrategy string

const (
	// SubdivisionBalanced splits on overflow and purges empty nodes
	SubdivisionBalanced SubdivisionStrategy = "balanced"
	// SubdivisionAggressive splits on overflow and purges empty nodes, the
	// same as balanced; no node is split before it overflows
	SubdivisionAggressive SubdivisionStrategy = "aggressive"
	// SubdivisionLazy splits on overflow but keeps empty nodes around
	SubdivisionLazy SubdivisionStrategy = "lazy"
)

// BulkConfig tunes batch insertion
type BulkConfig struct {
	BatchSize        int  `json:"batch_size" yaml:"batch_size"`
	Parallelism      int  `json:"parallelism" yaml:"parallelism"`
	PreSortBySFC     bool `json:"pre_sort_by_sfc" yaml:"pre_sort_by_sfc"`
	DeferSubdivision bool `json:"defer_subdivision" yaml:"defer_subdivision"`
}

// Config represents the complete spatial index configuration
type Config struct {
	// MaxEntitiesPerNode is the bucket size that triggers subdivision
	MaxEntitiesPerNode int `json:"max_entities_per_node" yaml:"max_entities_per_node"`

	// MaxDepth caps refinement; 0 means the engine's maximum level
	MaxDepth int `json:"max_depth" yaml:"max_depth"`

	// SpanningPolicy controls multi-cell storage of bounded entities
	SpanningPolicy SpanningPolicy `json:"spanning_policy" yaml:"spanning_policy"`

	// MaxSpanCells bounds the cells a bounded entity may occupy under the
	// per-level-cap policy
	MaxSpanCells int `json:"max_span_cells" yaml:"max_span_cells"`

	// SubdivisionStrategy selects the node split/merge behavior
	SubdivisionStrategy SubdivisionStrategy `json:"subdivision_strategy" yaml:"subdivision_strategy"`

	// Bulk tunes batch insertion
	Bulk BulkConfig `json:"bulk" yaml:"bulk"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxEntitiesPerNode:  10,
		MaxDepth:            0,
		SpanningPolicy:      SpanningPerLevelCap,
		MaxSpanCells:        64,
		SubdivisionStrategy: SubdivisionBalanced,
		Bulk: BulkConfig{
			BatchSize:        1024,
			Parallelism:      4,
			PreSortBySFC:     true,
			DeferSubdivision: true,
		},
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvironment()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load returns the defaults with environment overrides applied
func Load() (*Config, error) {
	cfg := DefaultConfig()
	cfg.applyEnvironment()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvironment overrides settings from ARXSPACE_* variables
func (c *Config) applyEnvironment() {
	if v := os.Getenv("ARXSPACE_MAX_ENTITIES_PER_NODE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxEntitiesPerNode = n
		}
	}
	if v := os.Getenv("ARXSPACE_MAX_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxDepth = n
		}
	}
	if v := os.Getenv("ARXSPACE_SPANNING_POLICY"); v != "" {
		c.SpanningPolicy = SpanningPolicy(strings.ToLower(v))
	}
	if v := os.Getenv("ARXSPACE_SUBDIVISION_STRATEGY"); v != "" {
		c.SubdivisionStrategy = SubdivisionStrategy(strings.ToLower(v))
	}
	if v := os.Getenv("ARXSPACE_BULK_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Bulk.BatchSize = n
		}
	}
	if v := os.Getenv("ARXSPACE_BULK_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Bulk.Parallelism = n
		}
	}
}

// Validate checks the configuration for invalid settings
func (c *Config) Validate() error {
	if c.MaxEntitiesPerNode < 1 {
		return fmt.Errorf("max_entities_per_node must be >= 1, got %d", c.MaxEntitiesPerNode)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth)
	}
	switch c.SpanningPolicy {
	case SpanningNone, SpanningPerLevelCap, SpanningAlways:
	default:
		return fmt.Errorf("unknown spanning_policy %q", c.SpanningPolicy)
	}
	if c.SpanningPolicy == SpanningPerLevelCap && c.MaxSpanCells < 1 {
		return fmt.Errorf("max_span_cells must be >= 1 under per-level-cap, got %d", c.MaxSpanCells)
	}
	switch c.SubdivisionStrategy {
	case SubdivisionBalanced, SubdivisionAggressive, SubdivisionLazy:
	default:
		return fmt.Errorf("unknown subdivision_strategy %q", c.SubdivisionStrategy)
	}
	if c.Bulk.BatchSize < 1 {
		return fmt.Errorf("bulk.batch_size must be >= 1, got %d", c.Bulk.BatchSize)
	}
	if c.Bulk.Parallelism < 1 {
		return fmt.Errorf("bulk.parallelism must be >= 1, got %d", c.Bulk.Parallelism)
	}
	return nil
}
