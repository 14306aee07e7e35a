// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// DefaultBedrockModel is used when BEDROCK_MODEL is not set.
const DefaultBedrockModel = "anthropic.claude-3-5-sonnet-20241022-v2:0"

// bedrockInvoker is the subset of the Bedrock runtime client used here
// (enables testing without AWS credentials).
type bedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockProvider implements Provider for AWS Bedrock using AWS SDK v2.
// Authentication uses AWS Signature V4 via the default credential chain.
type BedrockProvider struct {
	client  bedrockInvoker
	region  string
	model   string
	healthy bool
}

// NewBedrockProvider creates a Bedrock provider for the given region.
func NewBedrockProvider(ctx context.Context, region, model string) (*BedrockProvider, error) {
	if region == "" {
		return nil, fmt.Errorf("bedrock region is required")
	}
	if model == "" {
		model = DefaultBedrockModel
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &BedrockProvider{
		client:  bedrockruntime.NewFromConfig(cfg),
		region:  region,
		model:   model,
		healthy: true,
	}, nil
}

// Name returns the provider name.
func (p *BedrockProvider) Name() string {
	return "bedrock"
}

// IsHealthy returns whether the provider is healthy.
func (p *BedrockProvider) IsHealthy() bool {
	return p.healthy && p.region != ""
}

// GetCapabilities returns the provider's capabilities.
func (p *BedrockProvider) GetCapabilities() []string {
	return []string{"reasoning", "analysis", "writing", "aws_native"}
}

// EstimateCost estimates cost for a token count (Claude-class pricing).
func (p *BedrockProvider) EstimateCost(tokens int) float64 {
	return float64(tokens) * 0.00003
}

// Query invokes the configured Bedrock model.
func (p *BedrockProvider) Query(ctx context.Context, prompt string, options QueryOptions) (*Response, error) {
	start := time.Now()

	model := options.Model
	if model == "" || !isBedrockModelID(model) {
		model = p.model
	}

	requestBody, err := buildBedrockRequestBody(prompt, options, model)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	requestJSON, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	output, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(model),
		Body:        requestJSON,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		p.healthy = false
		return nil, fmt.Errorf("bedrock API error: %w", err)
	}

	p.healthy = true

	response, err := parseBedrockResponseBody(output.Body, model)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	response.Model = model
	response.ResponseTime = time.Since(start)
	response.Metadata["provider"] = "bedrock"
	response.Metadata["region"] = p.region

	return response, nil
}

// detectBedrockModelFamily returns the vendor prefix of a Bedrock model ID.
func detectBedrockModelFamily(model string) string {
	switch {
	case strings.HasPrefix(model, "anthropic."):
		return "anthropic"
	case strings.HasPrefix(model, "amazon."):
		return "amazon"
	case strings.HasPrefix(model, "meta."):
		return "meta"
	case strings.HasPrefix(model, "mistral."):
		return "mistral"
	default:
		return ""
	}
}

func isBedrockModelID(model string) bool {
	return detectBedrockModelFamily(model) != ""
}

// buildBedrockRequestBody builds the request body for the model family.
func buildBedrockRequestBody(prompt string, options QueryOptions, model string) (map[string]interface{}, error) {
	maxTokens := options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	switch detectBedrockModelFamily(model) {
	case "anthropic":
		return map[string]interface{}{
			"anthropic_version": "bedrock-2023-05-31",
			"max_tokens":        maxTokens,
			"temperature":       options.Temperature,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
		}, nil
	case "amazon":
		return map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": maxTokens,
				"temperature":   options.Temperature,
				"topP":          0.9,
			},
		}, nil
	case "meta":
		return map[string]interface{}{
			"prompt":      prompt,
			"max_gen_len": maxTokens,
			"temperature": options.Temperature,
			"top_p":       0.9,
		}, nil
	case "mistral":
		return map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  maxTokens,
			"temperature": options.Temperature,
			"top_p":       0.9,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported model family for model %s", model)
	}
}

// parseBedrockResponseBody extracts content and usage per model family.
func parseBedrockResponseBody(body []byte, model string) (*Response, error) {
	metadata := map[string]interface{}{}

	switch detectBedrockModelFamily(model) {
	case "anthropic":
		var parsed struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
			Usage struct {
				InputTokens  int `json:"input_tokens"`
				OutputTokens int `json:"output_tokens"`
			} `json:"usage"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, err
		}
		content := ""
		if len(parsed.Content) > 0 {
			content = parsed.Content[0].Text
		}
		return &Response{
			Content:    content,
			TokensUsed: parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
			Metadata:   metadata,
		}, nil
	case "amazon":
		var parsed struct {
			Results []struct {
				OutputText string `json:"outputText"`
				TokenCount int    `json:"tokenCount"`
			} `json:"results"`
			InputTextTokenCount int `json:"inputTextTokenCount"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, err
		}
		content := ""
		tokens := parsed.InputTextTokenCount
		if len(parsed.Results) > 0 {
			content = parsed.Results[0].OutputText
			tokens += parsed.Results[0].TokenCount
		}
		return &Response{Content: content, TokensUsed: tokens, Metadata: metadata}, nil
	case "meta":
		var parsed struct {
			Generation           string `json:"generation"`
			PromptTokenCount     int    `json:"prompt_token_count"`
			GenerationTokenCount int    `json:"generation_token_count"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, err
		}
		return &Response{
			Content:    parsed.Generation,
			TokensUsed: parsed.PromptTokenCount + parsed.GenerationTokenCount,
			Metadata:   metadata,
		}, nil
	case "mistral":
		var parsed struct {
			Outputs []struct {
				Text string `json:"text"`
			} `json:"outputs"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, err
		}
		content := ""
		if len(parsed.Outputs) > 0 {
			content = parsed.Outputs[0].Text
		}
		return &Response{Content: content, Metadata: metadata}, nil
	default:
		return nil, fmt.Errorf("unsupported model family for model %s", model)
	}
}
