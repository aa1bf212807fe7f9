package config

import (
	"testing"

	"github.com/inquestlab/inquest/internal/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(*Config) {}, false},
		{"nil-safe field left alone", func(c *Config) { c.Search.BraveAPIKey = "k" }, false},
		{"zero result count", func(c *Config) { c.Search.ResultCount = 0 }, true},
		{"zero attempts", func(c *Config) { c.Generation.Attempts = 0 }, true},
		{"negative retry wait", func(c *Config) { c.Generation.RetryWaitMs = -1 }, true},
		{"zero top k", func(c *Config) { c.Gather.TopK = 0 }, true},
		{"zero content cap", func(c *Config) { c.Analyze.ContentCap = 0 }, true},
		{"fraction above one", func(c *Config) { c.Validate.BiasMaxFraction = 1.5 }, true},
		{"negative fraction", func(c *Config) { c.Validate.ConfidenceMin = -0.1 }, true},
		{"medium above high", func(c *Config) { c.Synthesize.MediumCredibility = 0.9 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "LOUD" }, true},
		{"empty log level ok", func(c *Config) { c.Logging.Level = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr && !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("validation errors should wrap ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestValidate_NilConfig(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatal("nil config should not validate")
	}
}
