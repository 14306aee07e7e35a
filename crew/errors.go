// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

package crew

import "fmt"

// ConfigError indicates the crew could not be configured, typically a
// broken agents/tasks definition. The message is user-facing.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "crew configuration error: " + e.Msg
}

// ExecutionError wraps any failure inside the three-stage dispatch with
// the context the facade surfaces to callers.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("error running crew: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
