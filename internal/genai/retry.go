package genai

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/inquestlab/inquest/internal/errors"
)

// Default retry policy for one unit of generation work.
const (
	DefaultAttempts  = 2
	DefaultRetryWait = time.Second
)

// Retrying wraps a Generator with a bounded attempt count and a short
// constant backoff between attempts. This is the unit-of-work retry policy
// shared by every agent: on exhaustion the caller falls back to a
// locally-computed result instead of aborting its phase.
type Retrying struct {
	gen      Generator
	attempts int
	wait     time.Duration
}

// NewRetrying wraps gen. attempts is the total number of tries (not the
// number of retries); values below 1 fall back to DefaultAttempts.
func NewRetrying(gen Generator, attempts int, wait time.Duration) *Retrying {
	if attempts < 1 {
		attempts = DefaultAttempts
	}
	if wait < 0 {
		wait = DefaultRetryWait
	}
	return &Retrying{gen: gen, attempts: attempts, wait: wait}
}

// Generate implements Generator. Non-retryable errors (as classified by
// the errors package) stop immediately; everything else is retried until
// the attempt budget is spent or ctx is done.
func (r *Retrying) Generate(ctx context.Context, prompt string) (string, error) {
	// BackOff implementations are stateful; always build a fresh one.
	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(r.wait), uint64(r.attempts-1))

	var reply string
	err := backoff.Retry(func() error {
		out, err := r.gen.Generate(ctx, prompt)
		if err != nil {
			if !errors.IsRetryable(err) && !isPlainError(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		reply = out
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return "", err
	}
	return reply, nil
}

// isPlainError reports whether err carries no classification at all.
// Unclassified errors are treated as transient so that ad-hoc Generator
// implementations still get the retry budget.
func isPlainError(err error) bool {
	var ie errors.InquestError
	return !errors.As(err, &ie)
}
