// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultSerperEndpoint is the Serper.dev search API URL.
	DefaultSerperEndpoint = "https://google.serper.dev/search"

	// defaultSearchTimeout bounds a single search HTTP call.
	defaultSearchTimeout = 30 * time.Second

	// maxSearchResults limits how many organic results are rendered.
	maxSearchResults = 5
)

// HTTPClient is an interface for HTTP client operations (enables testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// SerperSearch queries the Serper.dev web search API, scoped to AWS
// documentation sources.
type SerperSearch struct {
	apiKey   string
	endpoint string
	client   HTTPClient
	retry    *RetryConfig
}

// NewSerperSearch creates a Serper search tool. The API key may be empty;
// Run then fails closed with an actionable error instead of calling out.
func NewSerperSearch(apiKey string) *SerperSearch {
	return &SerperSearch{
		apiKey:   apiKey,
		endpoint: DefaultSerperEndpoint,
		client:   &http.Client{Timeout: defaultSearchTimeout},
		retry:    DefaultRetryConfig(),
	}
}

// Name returns the tool name presented to agents
func (s *SerperSearch) Name() string {
	return "Web Search"
}

// Description returns the tool description presented to agents
func (s *SerperSearch) Description() string {
	return "Search the web for current AWS information, announcements, and community guidance."
}

// IsConfigured reports whether an API key is available.
func (s *SerperSearch) IsConfigured() bool {
	return s.apiKey != ""
}

// Run executes a web search and renders the organic results as text.
func (s *SerperSearch) Run(ctx context.Context, query string) (string, error) {
	if !s.IsConfigured() {
		return "", fmt.Errorf("web search unavailable: SERPER_API_KEY is not set")
	}

	searchQuery := fmt.Sprintf("AWS %s site:docs.aws.amazon.com OR site:aws.amazon.com", query)

	var result string
	err := Retry(ctx, s.retry, func() error {
		var callErr error
		result, callErr = s.search(ctx, searchQuery)
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("web search failed: %w", err)
	}

	return result, nil
}

type serperResult struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

func (s *SerperSearch) search(ctx context.Context, query string) (string, error) {
	reqBody, err := json.Marshal(map[string]interface{}{"q": query})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("X-API-KEY", s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("serper API error: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("serper API error (status %d): %s", resp.StatusCode, string(body))
	}

	var searchResp serperResult
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return renderResults(searchResp), nil
}

func renderResults(resp serperResult) string {
	if len(resp.Organic) == 0 {
		return "No search results found."
	}

	var b bytes.Buffer
	b.WriteString("Search Results:\n")
	for i, r := range resp.Organic {
		if i >= maxSearchResults {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.Snippet, r.Link)
	}
	return b.String()
}

// SetHTTPClient sets a custom HTTP client for testing.
func (s *SerperSearch) SetHTTPClient(client HTTPClient) {
	s.client = client
}
