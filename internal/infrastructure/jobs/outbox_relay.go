package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/internal/domain/repositories"
	"bridge-gate.backend/internal/metrics"
	"bridge-gate.backend/pkg/logger"
)

// messagePublisher carries one message to its destination chain
type messagePublisher interface {
	Publish(ctx context.Context, msg *entities.CrossChainMessage) error
}

// OutboxRelayJob publishes pending cross-chain messages in creation order
type OutboxRelayJob struct {
	repo        repositories.MessageRepository
	publisher   messagePublisher
	interval    time.Duration
	batchSize   int
	maxAttempts int
	stop        chan struct{}
}

// OutboxRelayConfig holds the relay cadence
type OutboxRelayConfig struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

func NewOutboxRelayJob(repo repositories.MessageRepository, publisher messagePublisher, cfg OutboxRelayConfig) *OutboxRelayJob {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	return &OutboxRelayJob{
		repo:        repo,
		publisher:   publisher,
		interval:    cfg.Interval,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxAttempts,
		stop:        make(chan struct{}),
	}
}

func (j *OutboxRelayJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting outbox relay job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Outbox relay job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Outbox relay job stopped")
			return
		case <-ticker.C:
			j.relayPending(ctx)
		}
	}
}

func (j *OutboxRelayJob) Stop() {
	close(j.stop)
}

// relayPending publishes one batch. A failed publish does not block the rest of
// the batch; the message stays pending until it runs out of attempts.
func (j *OutboxRelayJob) relayPending(ctx context.Context) {
	pending, err := j.repo.GetPending(ctx, j.batchSize)
	if err != nil {
		logger.Error(ctx, "Error fetching pending outbox messages", zap.Error(err))
		return
	}
	metrics.OutboxPending.Set(float64(len(pending)))
	if len(pending) == 0 {
		return
	}

	relayed := 0
	for _, msg := range pending {
		kind := string(msg.Kind)
		if err := j.publisher.Publish(ctx, msg); err != nil {
			metrics.OutboxFailures.WithLabelValues(kind).Inc()
			logger.Warn(ctx, "Outbox publish failed",
				zap.String("message_id", msg.ID.String()),
				zap.String("kind", kind),
				zap.Int("attempts", msg.Attempts+1),
				zap.Error(err),
			)
			if markErr := j.repo.MarkFailed(ctx, msg.ID, err.Error(), j.maxAttempts); markErr != nil {
				logger.Error(ctx, "Error recording outbox failure", zap.String("message_id", msg.ID.String()), zap.Error(markErr))
			}
			continue
		}
		if err := j.repo.MarkRelayed(ctx, msg.ID); err != nil {
			logger.Error(ctx, "Error marking outbox message relayed", zap.String("message_id", msg.ID.String()), zap.Error(err))
			continue
		}
		metrics.OutboxRelayed.WithLabelValues(kind).Inc()
		relayed++
	}

	logger.Info(ctx, "Outbox batch relayed", zap.Int("relayed", relayed), zap.Int("pending", len(pending)))
}
