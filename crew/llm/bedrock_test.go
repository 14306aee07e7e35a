// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBedrockClient struct {
	output *bedrockruntime.InvokeModelOutput
	err    error
	input  *bedrockruntime.InvokeModelInput
}

func (f *fakeBedrockClient) InvokeModel(_ context.Context, params *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	return f.output, f.err
}

func TestNewBedrockProviderRequiresRegion(t *testing.T) {
	_, err := NewBedrockProvider(context.Background(), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region is required")
}

func TestDetectBedrockModelFamily(t *testing.T) {
	tests := []struct {
		model  string
		family string
	}{
		{"anthropic.claude-3-5-sonnet-20241022-v2:0", "anthropic"},
		{"amazon.titan-text-express-v1", "amazon"},
		{"meta.llama3-70b-instruct-v1:0", "meta"},
		{"mistral.mistral-large-2402-v1:0", "mistral"},
		{"gemini-2.0-flash-exp", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.family, detectBedrockModelFamily(tt.model))
		})
	}
}

func TestBuildBedrockRequestBodyFamilies(t *testing.T) {
	options := QueryOptions{MaxTokens: 100, Temperature: 0.5}

	anthropicBody, err := buildBedrockRequestBody("hello", options, "anthropic.claude-3-5-sonnet-20241022-v2:0")
	require.NoError(t, err)
	assert.Equal(t, "bedrock-2023-05-31", anthropicBody["anthropic_version"])
	assert.Equal(t, 100, anthropicBody["max_tokens"])

	amazonBody, err := buildBedrockRequestBody("hello", options, "amazon.titan-text-express-v1")
	require.NoError(t, err)
	assert.Equal(t, "hello", amazonBody["inputText"])

	metaBody, err := buildBedrockRequestBody("hello", options, "meta.llama3-70b-instruct-v1:0")
	require.NoError(t, err)
	assert.Equal(t, 100, metaBody["max_gen_len"])

	_, err = buildBedrockRequestBody("hello", options, "unknown.model")
	require.Error(t, err)
}

func TestBedrockQueryAnthropicResponse(t *testing.T) {
	responseBody, _ := json.Marshal(map[string]interface{}{
		"content": []map[string]string{{"text": "Use IAM policies."}},
		"usage":   map[string]int{"input_tokens": 10, "output_tokens": 20},
	})

	fake := &fakeBedrockClient{
		output: &bedrockruntime.InvokeModelOutput{Body: responseBody},
	}
	provider := &BedrockProvider{
		client:  fake,
		region:  "us-east-1",
		model:   "anthropic.claude-3-5-sonnet-20241022-v2:0",
		healthy: true,
	}

	resp, err := provider.Query(context.Background(), "How do I restrict access?", QueryOptions{MaxTokens: 256})
	require.NoError(t, err)

	assert.Equal(t, "Use IAM policies.", resp.Content)
	assert.Equal(t, 30, resp.TokensUsed)
	assert.Equal(t, "bedrock", resp.Metadata["provider"])
	assert.Equal(t, "us-east-1", resp.Metadata["region"])
	require.NotNil(t, fake.input)
	assert.Equal(t, "anthropic.claude-3-5-sonnet-20241022-v2:0", *fake.input.ModelId)
}

func TestBedrockQueryMarksUnhealthyOnError(t *testing.T) {
	fake := &fakeBedrockClient{err: assert.AnError}
	provider := &BedrockProvider{
		client:  fake,
		region:  "us-east-1",
		model:   DefaultBedrockModel,
		healthy: true,
	}

	_, err := provider.Query(context.Background(), "prompt", QueryOptions{})
	require.Error(t, err)
	assert.False(t, provider.IsHealthy())
}

func TestParseBedrockResponseBodyAmazon(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"inputTextTokenCount": 5,
		"results": []map[string]interface{}{
			{"outputText": "Titan says hi", "tokenCount": 7},
		},
	})

	resp, err := parseBedrockResponseBody(body, "amazon.titan-text-express-v1")
	require.NoError(t, err)
	assert.Equal(t, "Titan says hi", resp.Content)
	assert.Equal(t, 12, resp.TokensUsed)
}
