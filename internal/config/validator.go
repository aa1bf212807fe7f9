package config

import (
	"fmt"

	"github.com/inquestlab/inquest/internal/errors"
)

// Validate checks that cfg's values are within their allowed ranges.
// It returns the first violation found as a *errors.ValidationError.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.NewValidationError("", "config is nil")
	}

	if cfg.Search.ResultCount < 1 {
		return errors.NewValidationError("search.result_count", "must be at least 1")
	}
	if cfg.Search.TimeoutSeconds < 1 {
		return errors.NewValidationError("search.timeout_seconds", "must be at least 1")
	}
	if cfg.Search.FetchConcurrency < 1 {
		return errors.NewValidationError("search.fetch_concurrency", "must be at least 1")
	}

	if cfg.Generation.Attempts < 1 {
		return errors.NewValidationError("generation.attempts", "must be at least 1")
	}
	if cfg.Generation.MaxTokens < 1 {
		return errors.NewValidationError("generation.max_tokens", "must be at least 1")
	}
	if cfg.Generation.RetryWaitMs < 0 {
		return errors.NewValidationError("generation.retry_wait_ms", "must not be negative")
	}

	if cfg.Gather.MaxQueryVariants < 1 {
		return errors.NewValidationError("gather.max_query_variants", "must be at least 1")
	}
	if cfg.Gather.TopK < 1 {
		return errors.NewValidationError("gather.top_k", "must be at least 1")
	}
	if cfg.Gather.MinContentLength < 0 {
		return errors.NewValidationError("gather.min_content_length", "must not be negative")
	}
	if cfg.Gather.QueryDelayMs < 0 {
		return errors.NewValidationError("gather.query_delay_ms", "must not be negative")
	}

	if cfg.Analyze.ContentCap < 1 {
		return errors.NewValidationError("analyze.content_cap", "must be at least 1")
	}
	if cfg.Analyze.MaxSummaries < 1 {
		return errors.NewValidationError("analyze.max_summaries", "must be at least 1")
	}
	if cfg.Analyze.MaxKeyPoints < 1 {
		return errors.NewValidationError("analyze.max_key_points", "must be at least 1")
	}

	for _, f := range []struct {
		name  string
		value float64
	}{
		{"validate.fact_checked_min_fraction", cfg.Validate.FactCheckedMinFraction},
		{"validate.confidence_min", cfg.Validate.ConfidenceMin},
		{"validate.bias_max_fraction", cfg.Validate.BiasMaxFraction},
		{"validate.high_credibility_min_fraction", cfg.Validate.HighCredibilityMinFraction},
		{"validate.high_credibility_score", cfg.Validate.HighCredibilityScore},
		{"synthesize.high_credibility", cfg.Synthesize.HighCredibility},
		{"synthesize.medium_credibility", cfg.Synthesize.MediumCredibility},
	} {
		if f.value < 0 || f.value > 1 {
			return errors.NewValidationError(f.name, fmt.Sprintf("must be in [0, 1], got %v", f.value))
		}
	}

	if cfg.Synthesize.MaxInsights < 1 {
		return errors.NewValidationError("synthesize.max_insights", "must be at least 1")
	}
	if cfg.Synthesize.MaxSources < 1 {
		return errors.NewValidationError("synthesize.max_sources", "must be at least 1")
	}
	if cfg.Synthesize.MediumCredibility > cfg.Synthesize.HighCredibility {
		return errors.NewValidationError("synthesize.medium_credibility", "must not exceed synthesize.high_credibility")
	}

	switch cfg.Logging.Level {
	case "DEBUG", "INFO", "WARN", "ERROR", "":
	default:
		return errors.NewValidationError("logging.level", fmt.Sprintf("unknown level %q", cfg.Logging.Level))
	}

	return nil
}
