// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

package gateway

// QueryRequest is the body of POST /query. Topic is optional and
// defaults to the query text.
type QueryRequest struct {
	Query string `json:"query"`
	Topic string `json:"topic,omitempty"`
}

// QueryResponse is the envelope every /query call returns, success or
// not. The transport status is always 200; Success carries the outcome.
type QueryResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// RootResponse describes the service on GET /.
type RootResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}
