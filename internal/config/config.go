// Package config provides configuration loading and validation for inquest.
// Configuration is read from a YAML file via viper, with environment
// variable overrides (INQUEST_* prefix). All heuristic tuning constants
// used by the pipeline agents live here as named defaults; they were
// preserved from the system this pipeline reproduces rather than re-derived.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete inquest configuration.
type Config struct {
	Search     SearchConfig     `mapstructure:"search"`
	Generation GenerationConfig `mapstructure:"generation"`
	Gather     GatherConfig     `mapstructure:"gather"`
	Analyze    AnalyzeConfig    `mapstructure:"analyze"`
	Validate   ValidateConfig   `mapstructure:"validate"`
	Synthesize SynthesizeConfig `mapstructure:"synthesize"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// SearchConfig controls the web-search providers and the page fetcher.
type SearchConfig struct {
	// BraveAPIKey authenticates against the Brave Search API (primary provider).
	BraveAPIKey string `mapstructure:"brave_api_key"`
	// SerperAPIKey authenticates against the Serper API (secondary provider).
	SerperAPIKey string `mapstructure:"serper_api_key"`
	// ResultCount is how many results to request per provider call (default: 5)
	ResultCount int `mapstructure:"result_count"`
	// TimeoutSeconds bounds each search or fetch HTTP call (default: 10)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// FetchConcurrency bounds how many pages are fetched in parallel (default: 4)
	FetchConcurrency int `mapstructure:"fetch_concurrency"`
}

// Timeout returns the HTTP timeout as a duration.
func (s *SearchConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// GenerationConfig controls the external text-generation capability.
type GenerationConfig struct {
	// APIKey authenticates against the Anthropic API. The ANTHROPIC_API_KEY
	// environment variable takes precedence when set.
	APIKey string `mapstructure:"api_key"`
	// Model is the model identifier to request (default: "claude-3-5-haiku-latest")
	Model string `mapstructure:"model"`
	// MaxTokens bounds each reply (default: 2048)
	MaxTokens int `mapstructure:"max_tokens"`
	// Attempts is how many times each unit of work tries the generation
	// capability before falling back to a local heuristic (default: 2)
	Attempts int `mapstructure:"attempts"`
	// RetryWaitMs is the pause between attempts in milliseconds (default: 1000)
	RetryWaitMs int `mapstructure:"retry_wait_ms"`
}

// RetryWait returns the pause between generation attempts as a duration.
func (g *GenerationConfig) RetryWait() time.Duration {
	return time.Duration(g.RetryWaitMs) * time.Millisecond
}

// GatherConfig controls the gathering phase heuristics.
type GatherConfig struct {
	// MaxQueryVariants caps query expansion to avoid excess API calls (default: 3)
	MaxQueryVariants int `mapstructure:"max_query_variants"`
	// TopK is how many scored sources survive filtering (default: 8)
	TopK int `mapstructure:"top_k"`
	// MinContentLength drops sources whose fetched text is shorter (default: 100)
	MinContentLength int `mapstructure:"min_content_length"`
	// QueryDelayMs is the pause between provider calls for successive
	// query variants in milliseconds (default: 1000)
	QueryDelayMs int `mapstructure:"query_delay_ms"`
}

// QueryDelay returns the inter-variant pause as a duration.
func (g *GatherConfig) QueryDelay() time.Duration {
	return time.Duration(g.QueryDelayMs) * time.Millisecond
}

// AnalyzeConfig controls the analysis phase heuristics.
type AnalyzeConfig struct {
	// ContentCap is the maximum number of runes of source content included
	// in a per-source analysis prompt (default: 3000)
	ContentCap int `mapstructure:"content_cap"`
	// MaxSummaries caps how many per-source summaries feed the overall
	// analysis prompt (default: 5)
	MaxSummaries int `mapstructure:"max_summaries"`
	// MaxKeyPoints caps how many key points feed the overall analysis
	// prompt (default: 10)
	MaxKeyPoints int `mapstructure:"max_key_points"`
}

// ValidateConfig controls the validation phase thresholds. The
// gap-detection fractions are tuning constants, adjustable but not derived
// from anything principled.
type ValidateConfig struct {
	// FactCheckedMinFraction: below this fraction of fact-checked insights,
	// the "insufficient fact verification" gap is reported (default: 0.5)
	FactCheckedMinFraction float64 `mapstructure:"fact_checked_min_fraction"`
	// ConfidenceMin: below this mean confidence, the "low overall
	// confidence" gap is reported (default: 0.6)
	ConfidenceMin float64 `mapstructure:"confidence_min"`
	// BiasMaxFraction: above this fraction of biased insights, the "bias
	// prevalence" gap is reported (default: 0.3)
	BiasMaxFraction float64 `mapstructure:"bias_max_fraction"`
	// HighCredibilityMinFraction: below this fraction of high-credibility
	// insights, the "limited high-credibility sources" gap is reported
	// (default: 0.5)
	HighCredibilityMinFraction float64 `mapstructure:"high_credibility_min_fraction"`
	// HighCredibilityScore is the credibility score above which an insight
	// counts as high-credibility (default: 0.7)
	HighCredibilityScore float64 `mapstructure:"high_credibility_score"`
}

// SynthesizeConfig controls the synthesis phase bounds and labels.
type SynthesizeConfig struct {
	// MaxInsights caps how many insights feed the report prompt (default: 5)
	MaxInsights int `mapstructure:"max_insights"`
	// MaxSources caps how many sources appear in the sources section (default: 5)
	MaxSources int `mapstructure:"max_sources"`
	// HighCredibility is the score threshold for the "High" label (default: 0.8)
	HighCredibility float64 `mapstructure:"high_credibility"`
	// MediumCredibility is the score threshold for the "Medium" label (default: 0.6)
	MediumCredibility float64 `mapstructure:"medium_credibility"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	// Level is the log level: "DEBUG", "INFO", "WARN", "ERROR" (default: "INFO")
	Level string `mapstructure:"level"`
	// Dir is the directory for the JSON log file. Empty logs to stderr.
	Dir string `mapstructure:"dir"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			ResultCount:      5,
			TimeoutSeconds:   10,
			FetchConcurrency: 4,
		},
		Generation: GenerationConfig{
			Model:       "claude-3-5-haiku-latest",
			MaxTokens:   2048,
			Attempts:    2,
			RetryWaitMs: 1000,
		},
		Gather: GatherConfig{
			MaxQueryVariants: 3,
			TopK:             8,
			MinContentLength: 100,
			QueryDelayMs:     1000,
		},
		Analyze: AnalyzeConfig{
			ContentCap:   3000,
			MaxSummaries: 5,
			MaxKeyPoints: 10,
		},
		Validate: ValidateConfig{
			FactCheckedMinFraction:     0.5,
			ConfidenceMin:              0.6,
			BiasMaxFraction:            0.3,
			HighCredibilityMinFraction: 0.5,
			HighCredibilityScore:       0.7,
		},
		Synthesize: SynthesizeConfig{
			MaxInsights:       5,
			MaxSources:        5,
			HighCredibility:   0.8,
			MediumCredibility: 0.6,
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}

// SetDefaults registers all default values with viper.
func SetDefaults() {
	d := Default()

	viper.SetDefault("search.result_count", d.Search.ResultCount)
	viper.SetDefault("search.timeout_seconds", d.Search.TimeoutSeconds)
	viper.SetDefault("search.fetch_concurrency", d.Search.FetchConcurrency)

	viper.SetDefault("generation.model", d.Generation.Model)
	viper.SetDefault("generation.max_tokens", d.Generation.MaxTokens)
	viper.SetDefault("generation.attempts", d.Generation.Attempts)
	viper.SetDefault("generation.retry_wait_ms", d.Generation.RetryWaitMs)

	viper.SetDefault("gather.max_query_variants", d.Gather.MaxQueryVariants)
	viper.SetDefault("gather.top_k", d.Gather.TopK)
	viper.SetDefault("gather.min_content_length", d.Gather.MinContentLength)
	viper.SetDefault("gather.query_delay_ms", d.Gather.QueryDelayMs)

	viper.SetDefault("analyze.content_cap", d.Analyze.ContentCap)
	viper.SetDefault("analyze.max_summaries", d.Analyze.MaxSummaries)
	viper.SetDefault("analyze.max_key_points", d.Analyze.MaxKeyPoints)

	viper.SetDefault("validate.fact_checked_min_fraction", d.Validate.FactCheckedMinFraction)
	viper.SetDefault("validate.confidence_min", d.Validate.ConfidenceMin)
	viper.SetDefault("validate.bias_max_fraction", d.Validate.BiasMaxFraction)
	viper.SetDefault("validate.high_credibility_min_fraction", d.Validate.HighCredibilityMinFraction)
	viper.SetDefault("validate.high_credibility_score", d.Validate.HighCredibilityScore)

	viper.SetDefault("synthesize.max_insights", d.Synthesize.MaxInsights)
	viper.SetDefault("synthesize.max_sources", d.Synthesize.MaxSources)
	viper.SetDefault("synthesize.high_credibility", d.Synthesize.HighCredibility)
	viper.SetDefault("synthesize.medium_credibility", d.Synthesize.MediumCredibility)

	viper.SetDefault("logging.level", d.Logging.Level)
	viper.SetDefault("logging.dir", d.Logging.Dir)
}

// Load reads configuration from viper's current state and validates it.
// Call SetDefaults (or cobra's OnInitialize hook) before Load.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigDir returns the directory where the inquest config file lives.
func ConfigDir() string {
	if dir := os.Getenv("INQUEST_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "inquest")
}

// EnvKeyReplacer maps nested config keys to environment variable names,
// e.g. INQUEST_GENERATION_MODEL for generation.model.
func EnvKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}
