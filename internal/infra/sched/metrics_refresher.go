package sched

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/repository"
	"cledumemoire/internal/infra/metrics"
	red "cledumemoire/internal/infra/redis"
)

const refreshLockKey = "lock:metrics_refresher"

// StatusCounter is the slice of the subscription repository the refresher reads.
type StatusCounter interface {
	CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error)
}

// MetricsRefresher periodically publishes gauges that are too costly to
// maintain on every write: subscriptions by status and DB pool usage.
type MetricsRefresher struct {
	interval  time.Duration
	subs      StatusCounter
	poolStats func() *pgxpool.Stat
	locker    red.Locker
	log       *zerolog.Logger
}

// NewMetricsRefresher builds the worker. poolStats and locker may be nil.
func NewMetricsRefresher(interval time.Duration, subs StatusCounter, poolStats func() *pgxpool.Stat, locker red.Locker, logger *zerolog.Logger) *MetricsRefresher {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "MetricsRefresher").Logger()
	return &MetricsRefresher{
		interval:  interval,
		subs:      subs,
		poolStats: poolStats,
		locker:    locker,
		log:       &l,
	}
}

func (w *MetricsRefresher) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting metrics refresher")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping metrics refresher")
			return ctx.Err()
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs one refresh. Pool stats are local to the instance; the
// subscription gauge is computed by whichever instance holds the lock.
func (w *MetricsRefresher) Tick(ctx context.Context) {
	if w.poolStats != nil {
		metrics.SetDBPoolStats(w.poolStats())
	}

	if w.locker != nil {
		token, err := w.locker.TryLock(ctx, refreshLockKey, w.interval/2)
		if err != nil {
			if !errors.Is(err, red.ErrLockHeld) {
				w.log.Warn().Err(err).Msg("refresh lock failed")
			}
			return
		}
		defer func() {
			if err := w.locker.Unlock(ctx, refreshLockKey, token); err != nil {
				w.log.Warn().Err(err).Msg("refresh unlock failed")
			}
		}()
	}

	counts, err := w.subs.CountByStatus(ctx, repository.NoTX)
	if err != nil {
		w.log.Error().Err(err).Msg("count subscriptions by status")
		return
	}
	metrics.SetSubscriptionsTotal(counts)
	w.log.Debug().Interface("counts", counts).Msg("subscription gauge refreshed")
}
