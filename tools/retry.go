// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"strings"
	"time"
)

// RetryConfig configures retry behavior for tool network calls
type RetryConfig struct {
	MaxRetries      int              // Maximum number of retry attempts
	InitialInterval time.Duration    // Initial wait interval
	MaxInterval     time.Duration    // Maximum wait interval
	Multiplier      float64          // Backoff multiplier
	Jitter          float64          // Jitter factor (0-1)
	RetryIf         func(error) bool // Custom retry condition
}

// DefaultRetryConfig returns a sensible default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
		Jitter:          0.1,
		RetryIf:         DefaultRetryCondition,
	}
}

// DefaultRetryCondition returns true for transient errors
func DefaultRetryCondition(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	errMsg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection refused",
		"connection reset",
		"temporary failure",
		"service unavailable",
		"too many requests",
		"rate limit",
		"429",
		"503",
		"504",
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}

// Retry executes fn with exponential backoff until it succeeds, the retry
// budget is exhausted, or the context is done. The last error is returned.
func Retry(ctx context.Context, config *RetryConfig, fn func() error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	retryIf := config.RetryIf
	if retryIf == nil {
		retryIf = DefaultRetryCondition
	}

	var lastErr error
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			interval := backoffInterval(config, attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !retryIf(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

func backoffInterval(config *RetryConfig, attempt int) time.Duration {
	interval := float64(config.InitialInterval) * math.Pow(config.Multiplier, float64(attempt-1))
	if interval > float64(config.MaxInterval) {
		interval = float64(config.MaxInterval)
	}

	if config.Jitter > 0 {
		jitter := interval * config.Jitter * (rand.Float64()*2 - 1)
		interval += jitter
	}

	if interval < 0 {
		interval = 0
	}
	return time.Duration(interval)
}
