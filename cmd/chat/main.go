// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

// Package main is an interactive terminal client for the AWS expert
// crew. It runs the pipeline in-process, no gateway required.
//
// Usage:
//
//	./chat
//
// Environment Variables:
//
//	GEMINI_API_KEY - Google Gemini API key
//	BEDROCK_REGION - AWS region for Bedrock
//	OLLAMA_ENDPOINT - Local Ollama endpoint
//	SERPER_API_KEY - Serper web search API key (optional)
//	CREW_CONFIG_DIR - Directory with agents.yaml and tasks.yaml (optional)
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"awsexpert/platform/crew"
)

const queryTimeout = 5 * time.Minute

type exchange struct {
	question string
	answer   string
}

func main() {
	pterm.DefaultHeader.WithFullWidth().Println("AWS Expert Crew")
	pterm.Println("Ask AWS questions. Type /history to review the session, /quit to exit.")
	pterm.Println()

	ctx := context.Background()
	spinner, _ := pterm.DefaultSpinner.Start("Initializing crew...")
	adapter, err := crew.NewAdapterFromEnv(ctx)
	if err != nil {
		spinner.Fail(fmt.Sprintf("Failed to initialize crew: %v", err))
		os.Exit(1)
	}
	spinner.Success("Crew ready")

	var history []exchange
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		pterm.Print(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("you> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/quit", line == "/exit":
			pterm.Println("Bye.")
			return
		case line == "/history":
			printHistory(history)
			continue
		}

		answer, err := runQuery(ctx, adapter, line)
		if err != nil {
			pterm.Println(pterm.NewStyle(pterm.FgRed).Sprintf("❌ %v", err))
			continue
		}

		history = append(history, exchange{question: line, answer: answer})
		pterm.Println()
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Answer")).
			Println(answer)
		pterm.Println()
	}
}

func runQuery(ctx context.Context, adapter *crew.Adapter, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	spinner, _ := pterm.DefaultSpinner.Start("Working...")
	answer, err := adapter.Execute(ctx, crew.NewPipelineInput(question, ""))
	if err != nil {
		spinner.Fail("Pipeline failed")
		return "", err
	}
	spinner.Success("Done")
	return answer, nil
}

func printHistory(history []exchange) {
	if len(history) == 0 {
		pterm.Println("No questions yet this session.")
		return
	}
	var items []pterm.BulletListItem
	for _, e := range history {
		items = append(items, pterm.BulletListItem{Level: 0, Text: e.question})
	}
	_ = pterm.DefaultBulletList.WithItems(items).Render()
}
