package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/exam-portal/internal/config"
	"github.com/spec-kit/exam-portal/internal/service"
)

const sweepLockKey = "exam-portal:notify:sweep-lock"

// Sweeper periodically retries undelivered notifications. The sweep is the
// same operation handlers can trigger on demand; here it runs on a timer so
// retries do not depend on anyone loading the application.
type Sweeper struct {
	notifications *service.NotificationService
	locker        *redis.Client
	logger        *zap.Logger
	interval      time.Duration
	batchLimit    int
	lockTTL       time.Duration
	instanceID    string
}

// NewSweeper constructs the worker. The redis client may be nil, in which
// case sweeps run unguarded (single-instance deployments).
func NewSweeper(notifications *service.NotificationService, locker *redis.Client, logger *zap.Logger, cfg config.SweepConfig) *Sweeper {
	return &Sweeper{
		notifications: notifications,
		locker:        locker,
		logger:        logger,
		interval:      cfg.Interval(),
		batchLimit:    cfg.BatchLimit,
		lockTTL:       cfg.LockTTL(),
		instanceID:    uuid.NewString(),
	}
}

// Run sweeps until the context is cancelled. Call from a goroutine.
func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("notification sweeper started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notification sweeper stopped")
			return
		case <-ticker.C:
			w.sweepOnce(ctx)
		}
	}
}

// sweepOnce takes the cross-instance lock and runs one sweep pass. Losing
// the lock just skips this tick; the lock expires on its own.
func (w *Sweeper) sweepOnce(ctx context.Context) {
	if w.locker != nil {
		acquired, err := w.locker.SetNX(ctx, sweepLockKey, w.instanceID, w.lockTTL).Result()
		if err != nil {
			w.logger.Warn("sweep lock unavailable; sweeping anyway", zap.Error(err))
		} else if !acquired {
			return
		}
	}
	w.notifications.Sweep(ctx, w.batchLimit)
}
