package model

import (
	"context"
	"errors"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  string
		retryable bool
	}{
		{"rate limit", errors.New("429 Too Many Requests"), "rate_limited", true},
		{"bad key", errors.New("invalid api key provided"), "invalid_api_key", false},
		{"quota", errors.New("insufficient_quota: billing hard limit"), "quota_exceeded", false},
		{"server error", errors.New("503 service unavailable"), "server_error", true},
		{"overloaded", errors.New("overloaded_error: try again"), "server_error", true},
		{"network", errors.New("dial tcp: connection refused"), "network_error", true},
		{"unknown", errors.New("model does not exist"), "api_error", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyError("test", tt.err)
			var pe *ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ProviderError, got %v", err)
			}
			if pe.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", pe.Code, tt.wantCode)
			}
			if pe.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", pe.Retryable, tt.retryable)
			}
			if !errors.Is(err, tt.err) {
				t.Error("original error lost from the chain")
			}
		})
	}

	t.Run("nil passes through", func(t *testing.T) {
		if err := ClassifyError("test", nil); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("cancellation passes through unclassified", func(t *testing.T) {
		err := ClassifyError("test", context.Canceled)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		var pe *ProviderError
		if errors.As(err, &pe) {
			t.Error("cancellation should not be wrapped as a provider error")
		}
	})

	t.Run("deadline is a retryable timeout", func(t *testing.T) {
		err := ClassifyError("test", context.DeadlineExceeded)
		if !IsRetryable(err) {
			t.Error("deadline should classify as retryable")
		}
	})
}

func TestRetryTransient(t *testing.T) {
	t.Run("retries transient failures until success", func(t *testing.T) {
		calls := 0
		err := RetryTransient(context.Background(), 3, func() error {
			calls++
			if calls < 3 {
				return ClassifyError("test", errors.New("503 service unavailable"))
			}
			return nil
		})
		if err != nil {
			t.Fatalf("expected success after retries, got %v", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("permanent failure returns immediately", func(t *testing.T) {
		calls := 0
		err := RetryTransient(context.Background(), 3, func() error {
			calls++
			return ClassifyError("test", errors.New("invalid api key"))
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if calls != 1 {
			t.Errorf("permanent error retried: %d calls", calls)
		}
	})

	t.Run("exhausted attempts return the last error", func(t *testing.T) {
		calls := 0
		err := RetryTransient(context.Background(), 2, func() error {
			calls++
			return ClassifyError("test", errors.New("rate limit exceeded"))
		})
		if !IsRetryable(err) {
			t.Errorf("expected the transient error back, got %v", err)
		}
		if calls != 2 {
			t.Errorf("expected 2 calls, got %d", calls)
		}
	})

	t.Run("cancelled context stops the backoff wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := RetryTransient(ctx, 5, func() error {
			calls++
			cancel()
			return ClassifyError("test", errors.New("429"))
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call before cancellation, got %d", calls)
		}
	})
}
