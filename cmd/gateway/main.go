// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

// Package main is the entry point for the AWS Expert gateway service.
//
// The gateway exposes the expert crew over HTTP:
// - POST /query runs a question through the three-stage pipeline
// - GET /health reports liveness
// - GET /metrics and /prometheus expose service metrics
//
// Usage:
//
//	./gateway
//
// Environment Variables:
//
//	PORT - HTTP server port (default: 8080)
//	GEMINI_API_KEY - Google Gemini API key
//	BEDROCK_REGION - AWS region for Bedrock
//	OLLAMA_ENDPOINT - Local Ollama endpoint
//	SERPER_API_KEY - Serper web search API key (optional)
//	CREW_CONFIG_DIR - Directory with agents.yaml and tasks.yaml (optional)
package main

import (
	"awsexpert/platform/gateway"
)

func main() {
	gateway.Run()
}
