package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ProviderError describes a failed model API call with enough structure
// for callers to decide whether retrying makes sense.
type ProviderError struct {
	Provider  string
	Code      string
	Message   string
	Retryable bool
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Provider, e.Message, e.Code)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a transient provider failure.
func IsRetryable(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Retryable
}

// ClassifyError maps a raw SDK error to a ProviderError. The SDKs do
// not expose a uniform error type, so classification falls back to
// matching on the error text the way their status codes surface in it.
func ClassifyError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Provider: provider, Code: "timeout",
			Message: "request timed out", Retryable: true, Err: err}
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "rate limit"),
		strings.Contains(lower, "429"),
		strings.Contains(lower, "too many requests"):
		return &ProviderError{Provider: provider, Code: "rate_limited",
			Message: "rate limit exceeded", Retryable: true, Err: err}

	case strings.Contains(lower, "api key"),
		strings.Contains(lower, "401"),
		strings.Contains(lower, "unauthorized"),
		strings.Contains(lower, "authentication"):
		return &ProviderError{Provider: provider, Code: "invalid_api_key",
			Message: "API key is invalid or expired", Retryable: false, Err: err}

	case strings.Contains(lower, "quota"),
		strings.Contains(lower, "billing"):
		return &ProviderError{Provider: provider, Code: "quota_exceeded",
			Message: "API quota exceeded", Retryable: false, Err: err}

	case strings.Contains(lower, "500"),
		strings.Contains(lower, "502"),
		strings.Contains(lower, "503"),
		strings.Contains(lower, "504"),
		strings.Contains(lower, "internal server error"),
		strings.Contains(lower, "service unavailable"),
		strings.Contains(lower, "bad gateway"),
		strings.Contains(lower, "overloaded"):
		return &ProviderError{Provider: provider, Code: "server_error",
			Message: fmt.Sprintf("server error: %v", err), Retryable: true, Err: err}

	case strings.Contains(lower, "connection"),
		strings.Contains(lower, "network"),
		strings.Contains(lower, "no such host"),
		strings.Contains(lower, "timeout"):
		return &ProviderError{Provider: provider, Code: "network_error",
			Message: fmt.Sprintf("network error: %v", err), Retryable: true, Err: err}
	}

	return &ProviderError{Provider: provider, Code: "api_error",
		Message: err.Error(), Retryable: false, Err: err}
}

// RetryTransient runs call, retrying up to attempts times with
// exponential backoff when the classified error is retryable. Permanent
// errors and context cancellation return immediately.
func RetryTransient(ctx context.Context, attempts int, call func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	backoff := 500 * time.Millisecond

	var err error
	for i := 0; i < attempts; i++ {
		if err = call(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
