// Package llm is the text-completion capability behind every pipeline.
// Each implementation handles provider-specific HTTP details, authentication,
// request/response formatting, and error handling.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Options tune a single completion call. Zero values mean "provider default".
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Provider generates a completion for a fully rendered prompt.
type Provider interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// TransportError means the provider could not be reached or answered with a
// non-2xx status. It says nothing about the shape of a successful reply.
type TransportError struct {
	Provider string
	Status   int // 0 when the request never produced a response
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// retryPolicy retries transport-level failures with a capped linear backoff,
// the same attempt*base pacing the connection loop uses elsewhere. Non-retryable
// failures (4xx other than 429, or a bad reply body) surface immediately.
type retryPolicy struct {
	attempts int
	backoff  time.Duration
}

func (r retryPolicy) do(ctx context.Context, provider string, fn func() (string, error)) (string, error) {
	attempts := max(1, r.attempts)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !retryable(err) || attempt == attempts {
			break
		}
		log.Warn().Err(err).Str("provider", provider).Int("attempt", attempt).Msg("provider call failed, retrying")
		select {
		case <-ctx.Done():
			return "", &TransportError{Provider: provider, Err: ctx.Err()}
		case <-time.After(time.Duration(attempt) * r.backoff):
		}
	}
	return "", lastErr
}

func retryable(err error) bool {
	var te *TransportError
	if !errors.As(err, &te) {
		return false
	}
	return te.Status == 0 || te.Status == 429 || te.Status >= 500
}
