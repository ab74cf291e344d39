package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"listing-reel-backend/internal/metrics"
	"listing-reel-backend/internal/pipeline"
)

var (
	ErrQueueFull   = errors.New("pipeline queue is full")
	ErrQueueClosed = errors.New("pipeline queue is closed")
)

// LocalQueue runs pipeline work in this process when no Redis is configured.
// Runs accepted before Shutdown are finished before it returns.
type LocalQueue struct {
	runner Runner
	jobs   chan pipeline.RunRequest
	log    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewLocalQueue(runner Runner, workers, size int, log zerolog.Logger) *LocalQueue {
	if workers <= 0 {
		workers = 4
	}
	if size <= 0 {
		size = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &LocalQueue{
		runner: runner,
		jobs:   make(chan pipeline.RunRequest, size),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	return q
}

func (q *LocalQueue) EnqueueRun(_ context.Context, req pipeline.RunRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		metrics.Enqueued.WithLabelValues("local", "closed").Inc()
		return ErrQueueClosed
	}

	select {
	case q.jobs <- req:
		metrics.Enqueued.WithLabelValues("local", "ok").Inc()
		return nil
	default:
		metrics.Enqueued.WithLabelValues("local", "full").Inc()
		return ErrQueueFull
	}
}

func (q *LocalQueue) work() {
	defer q.wg.Done()
	for req := range q.jobs {
		if err := q.runner.Run(q.ctx, req); err != nil {
			q.log.Warn().Err(err).Str("project_id", req.ProjectID.String()).Msg("pipeline run finished with error")
		}
	}
}

// Shutdown stops accepting runs and waits for queued and in-flight runs. If
// ctx ends first, in-flight runs are cancelled and recorded as failed.
func (q *LocalQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}

var _ Enqueuer = (*LocalQueue)(nil)
