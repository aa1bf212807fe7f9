package genai

import "context"

// Generator produces text for a prompt. Implementations must return a
// non-nil error for transport failures, quota errors, and empty replies;
// callers treat all of these identically.
type Generator interface {
	// Generate sends promptText to the capability and returns the reply.
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
