// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

package crew

import (
	"context"
	"fmt"

	"awsexpert/platform/shared/logger"
)

// Adapter fronts the crew with a two-branch dispatch. The primary branch
// runs the crew assembled at startup; if that run fails, the fallback
// branch rebuilds an equivalent crew from the same factories and runs it
// once more before reporting failure.
type Adapter struct {
	assembled *Crew
	build     func() (*Crew, error)
	log       *logger.Logger
}

// NewAdapter assembles the primary crew eagerly via build and keeps build
// around for fallback reconstruction. A build failure here is a
// configuration problem and surfaces immediately rather than on the
// first query.
func NewAdapter(build func() (*Crew, error)) (*Adapter, error) {
	if build == nil {
		return nil, &ConfigError{Msg: "adapter has no crew builder"}
	}

	assembled, err := build()
	if err != nil {
		return nil, fmt.Errorf("failed to assemble crew: %w", err)
	}

	return &Adapter{
		assembled: assembled,
		build:     build,
		log:       logger.New("crew-adapter"),
	}, nil
}

// Execute runs the pipeline for one input. Any failure after both
// branches are exhausted comes back as an *ExecutionError.
func (a *Adapter) Execute(ctx context.Context, input PipelineInput) (string, error) {
	result, primaryErr := a.assembled.Kickoff(ctx, input)
	if primaryErr == nil {
		return result, nil
	}

	a.log.Warn("", "assembled crew failed, reconstructing", map[string]interface{}{
		"error": primaryErr.Error(),
	})

	// Don't bother rebuilding when the caller is already gone.
	if ctx.Err() != nil {
		return "", &ExecutionError{Err: primaryErr}
	}

	rebuilt, err := a.build()
	if err != nil {
		a.log.Error("", "crew reconstruction failed", map[string]interface{}{
			"error": err.Error(),
		})
		return "", &ExecutionError{Err: primaryErr}
	}

	result, err = rebuilt.Kickoff(ctx, input)
	if err != nil {
		return "", &ExecutionError{Err: err}
	}

	a.log.Info("", "fallback crew succeeded", nil)
	return result, nil
}
