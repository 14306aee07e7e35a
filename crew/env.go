// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

package crew

import (
	"context"
	"fmt"
	"os"

	"awsexpert/platform/crew/llm"
	"awsexpert/platform/shared/logger"
	"awsexpert/platform/shared/secrets"
	"awsexpert/platform/tools"
)

// NewAdapterFromEnv wires the full pipeline from the environment:
// provider credentials via the secrets resolver, tools, and the agent
// and task config from CREW_CONFIG_DIR (built-in defaults when unset).
// It fails when no LLM provider is configured.
func NewAdapterFromEnv(ctx context.Context) (*Adapter, error) {
	log := logger.New("crew-bootstrap")
	resolver := secrets.NewResolver()

	llmConfig, err := llm.LoadConfigFromEnv(ctx, resolver)
	if err != nil {
		return nil, fmt.Errorf("failed to load LLM config: %w", err)
	}

	router := llm.NewRouter(ctx, llmConfig)
	if !router.HasProviders() {
		return nil, llm.ErrNoProviders
	}

	knowledge := tools.NewAWSKnowledge()

	var search Tool
	serperKey, err := resolver.Resolve(ctx, "SERPER_API_KEY")
	if err != nil {
		log.Warn("", "could not resolve SERPER_API_KEY, web search disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else if serperKey != "" {
		search = tools.NewSerperSearch(serperKey)
	} else {
		log.Info("", "SERPER_API_KEY not set, web search disabled", nil)
	}

	config, err := LoadConfig(os.Getenv("CREW_CONFIG_DIR"))
	if err != nil {
		return nil, err
	}

	builder := NewBuilder(config, router, knowledge, search)
	return NewAdapter(builder.Crew)
}
