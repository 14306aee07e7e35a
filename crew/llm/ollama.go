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
	"time"
)

// DefaultOllamaModel is used when OLLAMA_MODEL is not set.
const DefaultOllamaModel = "llama3.2"

// OllamaProvider implements Provider for a local Ollama endpoint.
type OllamaProvider struct {
	endpoint string
	model    string
	client   *http.Client
	healthy  bool
}

// NewOllamaProvider creates an Ollama provider for the given endpoint.
func NewOllamaProvider(endpoint, model string) *OllamaProvider {
	if model == "" {
		model = DefaultOllamaModel
	}

	return &OllamaProvider{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		client:   &http.Client{Timeout: 300 * time.Second},
		healthy:  true,
	}
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsHealthy returns whether the provider is healthy.
func (p *OllamaProvider) IsHealthy() bool {
	return p.healthy && p.endpoint != ""
}

// GetCapabilities returns the provider's capabilities.
func (p *OllamaProvider) GetCapabilities() []string {
	return []string{"chat", "self_hosted", "air_gapped"}
}

// EstimateCost is zero for self-hosted models.
func (p *OllamaProvider) EstimateCost(tokens int) float64 {
	return 0
}

// Query generates a completion via the Ollama generate API.
func (p *OllamaProvider) Query(ctx context.Context, prompt string, options QueryOptions) (*Response, error) {
	start := time.Now()

	model := options.Model
	if model == "" || strings.HasPrefix(model, "gemini-") || isBedrockModelID(model) {
		model = p.model
	}

	fullPrompt := prompt
	if options.SystemPrompt != "" {
		fullPrompt = options.SystemPrompt + "\n\n" + prompt
	}

	ollamaReq := map[string]interface{}{
		"model":  model,
		"prompt": fullPrompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": options.Temperature,
			"num_predict": options.MaxTokens,
		},
	}

	reqBody, err := json.Marshal(ollamaReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.endpoint+"/api/generate", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		p.healthy = false
		return nil, fmt.Errorf("ollama API error: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(body))
	}

	p.healthy = true

	var ollamaResp struct {
		Response  string `json:"response"`
		Model     string `json:"model"`
		EvalCount int    `json:"eval_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, err
	}

	return &Response{
		Content:      ollamaResp.Response,
		Model:        ollamaResp.Model,
		TokensUsed:   ollamaResp.EvalCount,
		ResponseTime: time.Since(start),
		Metadata:     map[string]interface{}{"provider": "ollama"},
	}, nil
}
