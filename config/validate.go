package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []string

	if c.Retrieval.TopKText <= 0 {
		errs = append(errs, "retrieval.top_k_text must be positive")
	}
	if c.Retrieval.ConfidenceThreshold < 0 || c.Retrieval.ConfidenceThreshold > 1 {
		errs = append(errs, "retrieval.confidence_threshold must be in [0,1]")
	}
	if c.Decompose.MaxSubQueries <= 0 {
		errs = append(errs, "decompose.max_sub_queries must be positive")
	}
	if c.Generation.MaxRetries < 0 {
		errs = append(errs, "generation.max_retries must not be negative")
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		errs = append(errs, "generation.temperature must be in [0,2]")
	}
	if c.Rewrite.MaxRewrites <= 0 {
		errs = append(errs, "rewrite.max_rewrites must be positive")
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		errs = append(errs, "telemetry.sample_rate must be in [0,1]")
	}
	if c.VectorStore.Backend == "" {
		errs = append(errs, "vector_store.backend must not be empty")
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q is not one of debug/info/warn/error", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}
