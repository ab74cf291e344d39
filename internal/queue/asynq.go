package queue

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"listing-reel-backend/internal/metrics"
	"listing-reel-backend/internal/pipeline"
)

// RedisClientOpt carries parsed go-redis options over to asynq, TLS and ACL
// user included.
func RedisClientOpt(o *redis.Options) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Network:      o.Network,
		Addr:         o.Addr,
		Username:     o.Username,
		Password:     o.Password,
		DB:           o.DB,
		DialTimeout:  o.DialTimeout,
		ReadTimeout:  o.ReadTimeout,
		WriteTimeout: o.WriteTimeout,
		PoolSize:     o.PoolSize,
		TLSConfig:    o.TLSConfig,
	}
}

// AsynqEnqueuer puts runs on a Redis-backed asynq queue.
type AsynqEnqueuer struct {
	client  *asynq.Client
	timeout time.Duration
	log     zerolog.Logger
}

// NewAsynqEnqueuer bounds each run by taskTimeout; zero keeps asynq's default.
func NewAsynqEnqueuer(redisOpt asynq.RedisClientOpt, taskTimeout time.Duration, log zerolog.Logger) *AsynqEnqueuer {
	return &AsynqEnqueuer{
		client:  asynq.NewClient(redisOpt),
		timeout: taskTimeout,
		log:     log,
	}
}

func (q *AsynqEnqueuer) Close() error {
	return q.client.Close()
}

func (q *AsynqEnqueuer) EnqueueRun(ctx context.Context, req pipeline.RunRequest) error {
	payload, err := encodeRun(req)
	if err != nil {
		return err
	}

	// A failed run is terminal, so asynq must not retry it.
	opts := []asynq.Option{asynq.MaxRetry(0)}
	if q.timeout > 0 {
		opts = append(opts, asynq.Timeout(q.timeout))
	}

	info, err := q.client.EnqueueContext(ctx, asynq.NewTask(TypePipelineRun, payload), opts...)
	if err != nil {
		metrics.Enqueued.WithLabelValues("asynq", "error").Inc()
		q.log.Warn().Err(err).Str("project_id", req.ProjectID.String()).Msg("enqueue pipeline run failed")
		return err
	}

	metrics.Enqueued.WithLabelValues("asynq", "ok").Inc()
	q.log.Debug().Str("project_id", req.ProjectID.String()).Str("task_id", info.ID).Msg("pipeline run enqueued")
	return nil
}

var _ Enqueuer = (*AsynqEnqueuer)(nil)
