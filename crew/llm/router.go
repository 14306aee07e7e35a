// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"awsexpert/platform/shared/secrets"
)

// ErrNoProviders is returned when no LLM provider is configured.
// The message is user-facing and must stay actionable.
var ErrNoProviders = errors.New("no LLM provider configured: set GEMINI_API_KEY, BEDROCK_REGION, or OLLAMA_ENDPOINT")

// preferenceOrder is the fixed provider selection order. Gemini first to
// match the original deployment, Bedrock as the AWS-native alternative,
// Ollama for local development.
var preferenceOrder = []string{"gemini", "bedrock", "ollama"}

// Config contains configuration for the LLM router.
type Config struct {
	GeminiKey      string
	GeminiModel    string
	BedrockRegion  string
	BedrockModel   string
	OllamaEndpoint string
	OllamaModel    string
}

// LoadConfigFromEnv builds router configuration from environment
// variables, resolving API keys through the secrets resolver so that
// *_SECRET_ARN indirection works.
func LoadConfigFromEnv(ctx context.Context, resolver *secrets.Resolver) (Config, error) {
	geminiKey, err := resolver.Resolve(ctx, "GEMINI_API_KEY")
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve GEMINI_API_KEY: %w", err)
	}

	return Config{
		GeminiKey:      geminiKey,
		GeminiModel:    getEnv("GEMINI_MODEL", ""),
		BedrockRegion:  getEnv("BEDROCK_REGION", ""),
		BedrockModel:   getEnv("BEDROCK_MODEL", ""),
		OllamaEndpoint: getEnv("OLLAMA_ENDPOINT", ""),
		OllamaModel:    getEnv("OLLAMA_MODEL", ""),
	}, nil
}

// Router selects among configured providers in preference order and
// fails over to the next provider when a call errors.
type Router struct {
	providers map[string]Provider
	mu        sync.RWMutex
}

// NewRouter creates a router from the given configuration. A router with
// zero providers is valid to construct; Query then fails closed with
// ErrNoProviders.
func NewRouter(ctx context.Context, config Config) *Router {
	router := &Router{
		providers: make(map[string]Provider),
	}

	if config.GeminiKey != "" {
		provider, err := NewGeminiProvider(config.GeminiKey, config.GeminiModel)
		if err != nil {
			log.Printf("[LLMRouter] Failed to initialize Gemini provider: %v", err)
		} else {
			router.providers["gemini"] = provider
		}
	}

	if config.BedrockRegion != "" {
		provider, err := NewBedrockProvider(ctx, config.BedrockRegion, config.BedrockModel)
		if err != nil {
			log.Printf("[LLMRouter] Failed to initialize Bedrock provider: %v", err)
		} else {
			router.providers["bedrock"] = provider
		}
	}

	if config.OllamaEndpoint != "" {
		router.providers["ollama"] = NewOllamaProvider(config.OllamaEndpoint, config.OllamaModel)
	}

	router.logProviderStatus()

	return router
}

func (r *Router) logProviderStatus() {
	var available []string
	for _, name := range preferenceOrder {
		if _, ok := r.providers[name]; ok {
			available = append(available, name)
		}
	}

	if len(available) == 0 {
		log.Printf("[LLMRouter] WARNING: no LLM providers available, all crew runs will fail")
		return
	}
	log.Printf("[LLMRouter] Providers available: %v", available)
}

// Register adds or replaces a provider. Used for tests and custom wiring.
func (r *Router) Register(name string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = provider
}

// HasProviders reports whether at least one provider is configured.
func (r *Router) HasProviders() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers) > 0
}

// IsHealthy reports whether any configured provider is healthy.
func (r *Router) IsHealthy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, provider := range r.providers {
		if provider.IsHealthy() {
			return true
		}
	}
	return false
}

// Query routes a completion to the first healthy provider in preference
// order, failing over to the remaining providers when a call errors.
func (r *Router) Query(ctx context.Context, prompt string, options QueryOptions) (*Response, error) {
	candidates := r.orderedProviders()
	if len(candidates) == 0 {
		return nil, ErrNoProviders
	}

	var lastErr error
	for _, provider := range candidates {
		if !provider.IsHealthy() {
			continue
		}

		response, err := provider.Query(ctx, prompt, options)
		if err == nil {
			return response, nil
		}

		log.Printf("[LLMRouter] Provider %s failed: %v", provider.Name(), err)
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	if lastErr == nil {
		return nil, fmt.Errorf("all LLM providers are unhealthy")
	}
	return nil, fmt.Errorf("all LLM providers failed: %w", lastErr)
}

func (r *Router) orderedProviders() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ordered := make([]Provider, 0, len(r.providers))
	for _, name := range preferenceOrder {
		if provider, ok := r.providers[name]; ok {
			ordered = append(ordered, provider)
		}
	}
	// Providers registered outside the preference order go last.
	for name, provider := range r.providers {
		if !isPreferred(name) {
			ordered = append(ordered, provider)
		}
	}
	return ordered
}

func isPreferred(name string) bool {
	for _, p := range preferenceOrder {
		if p == name {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
