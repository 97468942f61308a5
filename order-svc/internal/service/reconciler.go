package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const reconcileBatch = 100

// Reconciler periodically applies ledger jobs that the confirmation path left queued.
type Reconciler struct {
	ledger   *Ledger
	interval time.Duration
	logger   zerolog.Logger
}

func NewReconciler(ledger *Ledger, interval time.Duration, logger zerolog.Logger) *Reconciler {
	return &Reconciler{ledger: ledger, interval: interval, logger: logger}
}

func (r *Reconciler) Run(ctx context.Context) error {
	if r.interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Msg("ledger reconciler started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

func (r *Reconciler) RunOnce(ctx context.Context) int {
	applied, err := r.ledger.Reconcile(ctx, reconcileBatch)
	if err != nil {
		r.logger.Error().Err(err).Msg("list queued ledger jobs")
		return 0
	}
	if applied > 0 {
		r.logger.Info().Int("applied", applied).Msg("reconciled ledger jobs")
	}
	return applied
}
