// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	// geminiBaseURL is the default Gemini API endpoint.
	geminiBaseURL = "https://generativelanguage.googleapis.com"

	// geminiAPIVersion is the Gemini API version.
	geminiAPIVersion = "v1beta"

	// DefaultGeminiModel matches the model the service was tuned against.
	DefaultGeminiModel = "gemini-2.0-flash-exp"

	// geminiTimeout is the default HTTP timeout for completions.
	geminiTimeout = 120 * time.Second
)

// HTTPClient is an interface for HTTP client operations (enables testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// GeminiProvider implements Provider for Google's Gemini models via the
// generateContent REST API.
type GeminiProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  HTTPClient
	healthy bool
	mu      sync.RWMutex
}

// NewGeminiProvider creates a Gemini provider. The API key is required.
func NewGeminiProvider(apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	return &GeminiProvider{
		apiKey:  apiKey,
		baseURL: geminiBaseURL,
		model:   model,
		client:  &http.Client{Timeout: geminiTimeout},
		healthy: true,
	}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsHealthy returns whether the provider is healthy.
func (p *GeminiProvider) IsHealthy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.healthy && p.apiKey != ""
}

func (p *GeminiProvider) setHealthy(healthy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.healthy = healthy
}

// GetCapabilities returns the provider's capabilities.
func (p *GeminiProvider) GetCapabilities() []string {
	return []string{"reasoning", "analysis", "writing", "long_context"}
}

// EstimateCost estimates the cost for a given number of tokens.
// Blended Gemini Flash pricing estimate.
func (p *GeminiProvider) EstimateCost(tokens int) float64 {
	return float64(tokens) * 0.000003125
}

// Query generates a completion for the given prompt.
func (p *GeminiProvider) Query(ctx context.Context, prompt string, options QueryOptions) (*Response, error) {
	start := time.Now()

	model := options.Model
	if model == "" || !strings.HasPrefix(model, "gemini-") {
		model = p.model
	}

	maxTokens := options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	apiReq := p.buildAPIRequest(prompt, options.SystemPrompt, maxTokens, options.Temperature)

	reqBody, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent?key=%s",
		p.baseURL, geminiAPIVersion, model, p.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		p.setHealthy(false)
		return nil, fmt.Errorf("gemini API error: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			p.setHealthy(false)
		}
		return nil, fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(body))
	}

	p.setHealthy(true)

	var apiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	content := ""
	if len(apiResp.Candidates) > 0 && len(apiResp.Candidates[0].Content.Parts) > 0 {
		content = apiResp.Candidates[0].Content.Parts[0].Text
	}

	tokensUsed := 0
	if apiResp.UsageMetadata != nil {
		tokensUsed = apiResp.UsageMetadata.TotalTokenCount
	}

	return &Response{
		Content:      content,
		Model:        model,
		TokensUsed:   tokensUsed,
		ResponseTime: time.Since(start),
		Metadata:     map[string]interface{}{"provider": "gemini"},
	}, nil
}

// buildAPIRequest builds the Gemini generateContent request body.
func (p *GeminiProvider) buildAPIRequest(prompt, systemPrompt string, maxTokens int, temperature float64) map[string]any {
	apiReq := map[string]any{
		"contents": []map[string]any{
			{
				"role": "user",
				"parts": []map[string]any{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]any{
			"maxOutputTokens": maxTokens,
			"temperature":     temperature,
		},
	}

	if systemPrompt != "" {
		apiReq["systemInstruction"] = map[string]any{
			"parts": []map[string]any{
				{"text": systemPrompt},
			},
		}
	}

	return apiReq
}

// SetHTTPClient sets a custom HTTP client for testing.
func (p *GeminiProvider) SetHTTPClient(client HTTPClient) {
	p.client = client
}

// Gemini API wire types

type geminiResponse struct {
	Candidates    []geminiCandidate    `json:"candidates,omitempty"`
	UsageMetadata *geminiUsageMetadata `json:"usageMetadata,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}
