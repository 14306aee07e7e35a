// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"awsexpert/platform/shared/secrets"
)

// stubProvider is a configurable Provider for router tests
type stubProvider struct {
	name    string
	healthy bool
	content string
	err     error
	calls   int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Query(_ context.Context, prompt string, _ QueryOptions) (*Response, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &Response{
		Content:  p.content,
		Model:    p.name + "-model",
		Metadata: map[string]interface{}{"provider": p.name},
	}, nil
}

func (p *stubProvider) IsHealthy() bool            { return p.healthy }
func (p *stubProvider) GetCapabilities() []string  { return []string{"test"} }
func (p *stubProvider) EstimateCost(_ int) float64 { return 0 }

func TestQueryFailsClosedWithoutProviders(t *testing.T) {
	router := NewRouter(context.Background(), Config{})

	assert.False(t, router.HasProviders())
	assert.False(t, router.IsHealthy())

	_, err := router.Query(context.Background(), "prompt", QueryOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoProviders)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestQueryPrefersGemini(t *testing.T) {
	router := NewRouter(context.Background(), Config{})
	gemini := &stubProvider{name: "gemini", healthy: true, content: "from gemini"}
	ollama := &stubProvider{name: "ollama", healthy: true, content: "from ollama"}
	router.Register("gemini", gemini)
	router.Register("ollama", ollama)

	resp, err := router.Query(context.Background(), "prompt", QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from gemini", resp.Content)
	assert.Equal(t, 0, ollama.calls)
}

func TestQueryFailsOverOnError(t *testing.T) {
	router := NewRouter(context.Background(), Config{})
	gemini := &stubProvider{name: "gemini", healthy: true, err: fmt.Errorf("quota exceeded")}
	ollama := &stubProvider{name: "ollama", healthy: true, content: "from ollama"}
	router.Register("gemini", gemini)
	router.Register("ollama", ollama)

	resp, err := router.Query(context.Background(), "prompt", QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from ollama", resp.Content)
	assert.Equal(t, 1, gemini.calls)
}

func TestQuerySkipsUnhealthyProviders(t *testing.T) {
	router := NewRouter(context.Background(), Config{})
	gemini := &stubProvider{name: "gemini", healthy: false, content: "from gemini"}
	ollama := &stubProvider{name: "ollama", healthy: true, content: "from ollama"}
	router.Register("gemini", gemini)
	router.Register("ollama", ollama)

	resp, err := router.Query(context.Background(), "prompt", QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from ollama", resp.Content)
	assert.Equal(t, 0, gemini.calls)
}

func TestQueryAllProvidersFail(t *testing.T) {
	router := NewRouter(context.Background(), Config{})
	router.Register("gemini", &stubProvider{name: "gemini", healthy: true, err: fmt.Errorf("gemini down")})
	router.Register("ollama", &stubProvider{name: "ollama", healthy: true, err: fmt.Errorf("ollama down")})

	_, err := router.Query(context.Background(), "prompt", QueryOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all LLM providers failed")
	assert.Contains(t, err.Error(), "ollama down")
}

func TestQueryAllProvidersUnhealthy(t *testing.T) {
	router := NewRouter(context.Background(), Config{})
	router.Register("gemini", &stubProvider{name: "gemini", healthy: false})

	_, err := router.Query(context.Background(), "prompt", QueryOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unhealthy")
}

func TestQueryStopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	router := NewRouter(context.Background(), Config{})
	gemini := &stubProvider{name: "gemini", healthy: true, err: errors.New("boom")}
	ollama := &stubProvider{name: "ollama", healthy: true, content: "should not be reached"}
	router.Register("gemini", gemini)
	router.Register("ollama", ollama)

	cancel()
	_, err := router.Query(ctx, "prompt", QueryOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, ollama.calls)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key-123")
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash-exp")
	t.Setenv("BEDROCK_REGION", "us-east-1")
	t.Setenv("OLLAMA_ENDPOINT", "http://localhost:11434")

	config, err := LoadConfigFromEnv(context.Background(), secrets.NewResolver())
	require.NoError(t, err)

	assert.Equal(t, "key-123", config.GeminiKey)
	assert.Equal(t, "gemini-2.0-flash-exp", config.GeminiModel)
	assert.Equal(t, "us-east-1", config.BedrockRegion)
	assert.Equal(t, "http://localhost:11434", config.OllamaEndpoint)
}

func TestRouterHealthReflectsProviders(t *testing.T) {
	router := NewRouter(context.Background(), Config{})
	provider := &stubProvider{name: "gemini", healthy: true}
	router.Register("gemini", provider)

	assert.True(t, router.IsHealthy())
	provider.healthy = false
	assert.False(t, router.IsHealthy())
}
