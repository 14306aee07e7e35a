// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// TestRetrySucceedsAfterTransientErrors tests the happy retry path
func TestRetrySucceedsAfterTransientErrors(t *testing.T) {
	config := &RetryConfig{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}

	attempts := 0
	err := Retry(context.Background(), config, func() error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("service unavailable")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

// TestRetryStopsOnPermanentError tests that non-transient errors fail fast
func TestRetryStopsOnPermanentError(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), DefaultRetryConfig(), func() error {
		attempts++
		return fmt.Errorf("invalid credentials")
	})

	if err == nil {
		t.Fatal("Expected error")
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
}

// TestRetryExhaustsBudget tests that the last error is returned
func TestRetryExhaustsBudget(t *testing.T) {
	config := &RetryConfig{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Multiplier:      2.0,
	}

	attempts := 0
	err := Retry(context.Background(), config, func() error {
		attempts++
		return fmt.Errorf("rate limit hit (attempt %d)", attempts)
	})

	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts (1 + 2 retries), got %d", attempts)
	}
}

// TestRetryRespectsContextCancellation tests abort between attempts
func TestRetryRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	config := &RetryConfig{
		MaxRetries:      5,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2.0,
	}

	attempts := 0
	errCh := make(chan error, 1)
	go func() {
		errCh <- Retry(ctx, config, func() error {
			attempts++
			return fmt.Errorf("connection refused")
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Retry did not abort on context cancellation")
	}
}

// TestDefaultRetryCondition classifies errors
func TestDefaultRetryCondition(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"503", fmt.Errorf("serper API error (status 503): busy"), true},
		{"rate limit", fmt.Errorf("rate limit exceeded"), true},
		{"connection refused", fmt.Errorf("dial tcp: connection refused"), true},
		{"auth failure", fmt.Errorf("401 unauthorized"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultRetryCondition(tt.err); got != tt.retryable {
				t.Errorf("Expected retryable=%v for %v", tt.retryable, tt.err)
			}
		})
	}
}
