package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// NotifyChannel is the channel the projects trigger notifies on.
const NotifyChannel = "project_changes"

type Publisher interface {
	Publish(ChangeEvent)
}

// PGListener feeds a Publisher from Postgres NOTIFY payloads emitted by the
// projects trigger. Notifications sent while the listener is reconnecting are
// not replayed.
type PGListener struct {
	pool       *pgxpool.Pool
	pub        Publisher
	log        zerolog.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewPGListener(pool *pgxpool.Pool, pub Publisher, log zerolog.Logger) *PGListener {
	return &PGListener{
		pool:       pool,
		pub:        pub,
		log:        log,
		minBackoff: 500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
}

// Run listens until ctx is cancelled, reconnecting with backoff on errors.
func (l *PGListener) Run(ctx context.Context) error {
	backoff := l.minBackoff
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.log.Warn().Err(err).Dur("retry_in", backoff).Msg("change feed listener dropped")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > l.maxBackoff {
			backoff = l.maxBackoff
		}
	}
}

func (l *PGListener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	l.log.Info().Str("channel", NotifyChannel).Msg("change feed listening")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("failed to wait for notification: %w", err)
		}

		ev, err := DecodeNotification([]byte(n.Payload))
		if err != nil {
			l.log.Error().Err(err).Str("payload", n.Payload).Msg("bad change feed payload")
			continue
		}
		l.pub.Publish(ev)
	}
}

// DecodeNotification parses the JSON the projects trigger sends.
func DecodeNotification(payload []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return ChangeEvent{}, fmt.Errorf("failed to decode change event: %w", err)
	}
	switch ev.Op {
	case OpInsert, OpUpdate, OpDelete:
	default:
		return ChangeEvent{}, fmt.Errorf("unknown change op %q", ev.Op)
	}
	return ev, nil
}
