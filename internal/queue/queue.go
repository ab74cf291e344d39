// Package queue schedules pipeline runs in the background.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"listing-reel-backend/internal/pipeline"
)

const TypePipelineRun = "pipeline:run"

// Enqueuer schedules a run and returns once it is accepted.
type Enqueuer interface {
	EnqueueRun(ctx context.Context, req pipeline.RunRequest) error
}

// Runner executes one run.
type Runner interface {
	Run(ctx context.Context, req pipeline.RunRequest) error
}

func encodeRun(req pipeline.RunRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run: %w", err)
	}
	return payload, nil
}

func decodeRun(payload []byte) (pipeline.RunRequest, error) {
	var req pipeline.RunRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return pipeline.RunRequest{}, fmt.Errorf("failed to decode run: %w", err)
	}
	return req, nil
}
