package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Worker runs asynq pipeline tasks.
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	runner Runner
	log    zerolog.Logger
}

func NewWorker(redisOpt asynq.RedisClientOpt, concurrency int, runner Runner, log zerolog.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = 4
	}
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		LogLevel:    asynq.InfoLevel,
	})
	mux := asynq.NewServeMux()
	w := &Worker{srv: srv, mux: mux, runner: runner, log: log}
	mux.HandleFunc(TypePipelineRun, w.handlePipelineRun)
	return w
}

func (w *Worker) handlePipelineRun(ctx context.Context, t *asynq.Task) error {
	req, err := decodeRun(t.Payload())
	if err != nil {
		w.log.Error().Err(err).Msg("pipeline task payload invalid")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := w.runner.Run(ctx, req); err != nil {
		// The project already carries the outcome; a rerun could never start.
		w.log.Warn().Err(err).Str("project_id", req.ProjectID.String()).Msg("pipeline task finished with error")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return nil
}

// Start begins processing in the background; stop it with Shutdown.
func (w *Worker) Start() error {
	return w.srv.Start(w.mux)
}

func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
