// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

// Package llm routes crew completions to configured LLM providers.
// Providers are selected in a fixed preference order (gemini, bedrock,
// ollama) with failover to the remaining providers; a deployment with no
// provider configured fails closed with an actionable error.
package llm

import (
	"context"
	"time"
)

// Provider is the interface implemented by each LLM backend.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Name returns the unique identifier for this provider.
	Name() string

	// Query generates a completion for the given prompt.
	// The context should be used for cancellation and timeout.
	Query(ctx context.Context, prompt string, options QueryOptions) (*Response, error)

	// IsHealthy reports whether the provider is operational.
	IsHealthy() bool

	// GetCapabilities returns the features this provider supports.
	GetCapabilities() []string

	// EstimateCost provides a cost estimate for a given token count.
	EstimateCost(tokens int) float64
}

// QueryOptions contains options for LLM queries.
type QueryOptions struct {
	MaxTokens    int     `json:"max_tokens"`
	Temperature  float64 `json:"temperature"`
	Model        string  `json:"model"`
	SystemPrompt string  `json:"system_prompt"`
}

// Response represents a completion from an LLM provider.
type Response struct {
	Content      string                 `json:"content"`
	Model        string                 `json:"model"`
	TokensUsed   int                    `json:"tokens_used"`
	Metadata     map[string]interface{} `json:"metadata"`
	ResponseTime time.Duration          `json:"response_time"`
}
