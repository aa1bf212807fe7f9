// Package genai abstracts the external text-generation capability consumed
// by the analysis, validation, and synthesis agents.
//
// The capability is a single method: take a prompt, return text or fail.
// An empty reply counts as failure. The Anthropic backend is the production
// implementation; Retrying wraps any Generator with the bounded
// retry-and-backoff policy shared by every unit of agent work. A nil
// Generator means the capability is not configured, which agents treat as
// permanent local-fallback mode.
package genai
