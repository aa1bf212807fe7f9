// Package errors provides centralized error definitions and error handling
// utilities for the inquest codebase. It defines domain-specific errors,
// semantic error types, error constructors with context wrapping, and error
// classification helpers.
//
// # Error Types
//
// The package provides two categories of errors:
//
// Domain-specific errors represent errors from specific subsystems:
//   - AgentError: errors reported by a pipeline agent (gatherer, analyzer, ...)
//   - PipelineError: errors raised at the orchestration boundary
//   - GenerationError: errors from the external text-generation capability
//   - SearchError: errors from web-search providers
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found
//   - ValidationError: invalid input or state
//
// # Usage
//
// Creating errors:
//
//	// Structural failure: an agent found no input to work with
//	err := errors.NewAgentError("analyzer", "no sources to analyze", errors.ErrNoInput)
//
//	// With context wrapping
//	err := errors.NewGenerationError("request failed", baseErr).WithModel("claude-3-5-haiku")
//
// Checking errors:
//
//	// Check for specific sentinel errors
//	if errors.Is(err, errors.ErrNoInput) { ... }
//
//	// Check for error types
//	var agentErr *errors.AgentError
//	if errors.As(err, &agentErr) { ... }
//
//	// Use classification helpers
//	if errors.IsRetryable(err) { ... }
//	if errors.IsStructural(err) { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry
//   - Structural: an agent's required input category was empty; never retried
//   - UserFacing: errors safe to display to users (vs internal errors)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Agent-related sentinel errors
var (
	// ErrNoInput indicates that an agent's required input category was empty.
	// This is the only structural precondition failure in the pipeline.
	ErrNoInput = New("required input category is empty")
	// ErrAgentFailed indicates a general agent execution failure.
	ErrAgentFailed = New("agent execution failed")
)

// Generation-related sentinel errors
var (
	// ErrGenerationUnavailable indicates that no generation capability is configured.
	ErrGenerationUnavailable = New("generation capability not configured")
	// ErrEmptyReply indicates that the generation capability returned no text.
	// Callers must treat this the same as a transport failure.
	ErrEmptyReply = New("empty reply from generation capability")
)

// Search-related sentinel errors
var (
	// ErrNoProviders indicates that no search provider is configured.
	ErrNoProviders = New("no search providers configured")
	// ErrNoResults indicates that every configured provider returned nothing.
	ErrNoResults = New("no search results from any provider")
)

// Store-related sentinel errors
var (
	// ErrQueryNotFound indicates that a query ID has no data in the store.
	ErrQueryNotFound = New("query not found in knowledge store")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// InquestError is the base interface for all inquest errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type InquestError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// AgentError represents an error reported by a pipeline agent.
//
// Example:
//
//	err := errors.NewAgentError("analyzer", "no sources to analyze", errors.ErrNoInput)
//	err = err.WithQueryID("abc123")
type AgentError struct {
	baseError
	Agent   string
	QueryID string
}

// NewAgentError creates a new AgentError.
func NewAgentError(agent, message string, cause error) *AgentError {
	return &AgentError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
		Agent: agent,
	}
}

// WithQueryID adds a query ID to the error context.
func (e *AgentError) WithQueryID(id string) *AgentError {
	e.QueryID = id
	return e
}

// WithSeverity sets the error severity.
func (e *AgentError) WithSeverity(s Severity) *AgentError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *AgentError) Error() string {
	var parts []string
	if e.Agent != "" {
		parts = append(parts, fmt.Sprintf("agent=%s", e.Agent))
	}
	if e.QueryID != "" {
		parts = append(parts, fmt.Sprintf("query=%s", e.QueryID))
	}

	prefix := "agent error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("agent error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *AgentError) Is(target error) bool {
	if _, ok := target.(*AgentError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// PipelineError represents an error raised at the orchestration boundary.
//
// Example:
//
//	err := errors.NewPipelineError("phase failed", cause).WithPhase("analyzing")
type PipelineError struct {
	baseError
	Phase   string
	QueryID string
}

// NewPipelineError creates a new PipelineError.
func NewPipelineError(message string, cause error) *PipelineError {
	return &PipelineError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithPhase adds the originating phase to the error context.
func (e *PipelineError) WithPhase(phase string) *PipelineError {
	e.Phase = phase
	return e
}

// WithQueryID adds a query ID to the error context.
func (e *PipelineError) WithQueryID(id string) *PipelineError {
	e.QueryID = id
	return e
}

// Error returns the formatted error message.
func (e *PipelineError) Error() string {
	var parts []string
	if e.Phase != "" {
		parts = append(parts, fmt.Sprintf("phase=%s", e.Phase))
	}
	if e.QueryID != "" {
		parts = append(parts, fmt.Sprintf("query=%s", e.QueryID))
	}

	prefix := "pipeline error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("pipeline error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *PipelineError) Is(target error) bool {
	if _, ok := target.(*PipelineError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// GenerationError represents an error from the external text-generation
// capability. Generation errors are retryable by default: callers recover
// them with retry-then-fallback and never escalate them past the agent.
type GenerationError struct {
	baseError
	Model string
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(message string, cause error) *GenerationError {
	return &GenerationError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: false,
		},
	}
}

// WithModel adds the model name to the error context.
func (e *GenerationError) WithModel(model string) *GenerationError {
	e.Model = model
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *GenerationError) WithRetryable(r bool) *GenerationError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *GenerationError) Error() string {
	prefix := "generation error"
	if e.Model != "" {
		prefix = fmt.Sprintf("generation error [model=%s]", e.Model)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *GenerationError) Is(target error) bool {
	if _, ok := target.(*GenerationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// SearchError represents an error from a web-search provider.
type SearchError struct {
	baseError
	Provider string
}

// NewSearchError creates a new SearchError.
func NewSearchError(provider, message string, cause error) *SearchError {
	return &SearchError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: false,
		},
		Provider: provider,
	}
}

// Error returns the formatted error message.
func (e *SearchError) Error() string {
	prefix := "search error"
	if e.Provider != "" {
		prefix = fmt.Sprintf("search error [provider=%s]", e.Provider)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *SearchError) Is(target error) bool {
	if _, ok := target.(*SearchError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError indicates that a resource could not be found.
type NotFoundError struct {
	baseError
	Resource string
	ID       string
}

// NewNotFoundError creates a new NotFoundError for the given resource and ID.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s %q not found", resource, id),
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		Resource: resource,
		ID:       id,
	}
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError indicates that input or configuration validation failed.
type ValidationError struct {
	baseError
	Field string
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			cause:      ErrInvalidInput,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
		Field: field,
	}
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error [field=%s]: %s", e.Field, e.message)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable reports whether err is transient and the operation may
// succeed on retry. Structural failures are never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ie InquestError
	if errors.As(err, &ie) {
		return ie.IsRetryable()
	}
	return false
}

// IsStructural reports whether err is a structural precondition failure:
// an agent's required input category was empty. Structural failures abort
// the remaining pipeline phases.
func IsStructural(err error) bool {
	return errors.Is(err, ErrNoInput)
}

// IsUserFacing reports whether err's message is safe to display to users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var ie InquestError
	if errors.As(err, &ie) {
		return ie.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity of err, or SeverityError for errors
// that do not implement InquestError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityInfo
	}
	var ie InquestError
	if errors.As(err, &ie) {
		return ie.Severity()
	}
	return SeverityError
}
