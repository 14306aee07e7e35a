// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

// Package gateway exposes the AWS expert crew over HTTP.
//
// The facade is deliberately small: POST /query runs the pipeline and
// always answers 200 with a {success, result, error} envelope, GET /
// describes the service, and GET /health reports liveness without
// touching the pipeline. Metrics are served as JSON on /metrics and in
// Prometheus exposition format on /prometheus.
package gateway
