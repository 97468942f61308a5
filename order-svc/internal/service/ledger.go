package service

import (
	"context"
	"errors"
	"time"

	"tabletap/order-svc/internal/domain"
	"tabletap/order-svc/internal/identity"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type LedgerConfig struct {
	AccrualEnabled    bool
	RedemptionEnabled bool
	RetryAttempts     int
	RetryBackoff      time.Duration
}

// Ledger owns every change to user balances. Each change is a read-modify-write
// of one (user, restaurant) row inside a storage transaction.
type Ledger struct {
	repo   LedgerRepository
	cfg    LedgerConfig
	logger zerolog.Logger
}

func NewLedger(repo LedgerRepository, cfg LedgerConfig, logger zerolog.Logger) *Ledger {
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}
	return &Ledger{repo: repo, cfg: cfg, logger: logger}
}

// ComputeNewBalance is current - used + orderTotal*pct/100. It does not floor at zero.
func ComputeNewBalance(current, loyaltyPercentage, orderTotal, balanceUsed decimal.Decimal) decimal.Decimal {
	earned := orderTotal.Mul(loyaltyPercentage).Div(hundred)
	return current.Sub(balanceUsed).Add(earned)
}

func (l *Ledger) computeFor(orderTotal, balanceUsed decimal.Decimal) func(domain.BalanceState) decimal.Decimal {
	return func(state domain.BalanceState) decimal.Decimal {
		pct := state.LoyaltyPercentage
		if !l.cfg.AccrualEnabled {
			pct = decimal.Zero
		}
		return ComputeNewBalance(state.Current, pct, orderTotal, balanceUsed)
	}
}

// AvailableBalance is what a new order may redeem: zero when redemption is off
// or the balance is not positive.
func (l *Ledger) AvailableBalance(ctx context.Context, userID, restaurantID string) (decimal.Decimal, error) {
	if !l.cfg.RedemptionEnabled {
		return decimal.Zero, nil
	}
	balance, err := l.repo.GetBalance(ctx, userID, restaurantID)
	if err != nil {
		return decimal.Zero, err
	}
	if balance.IsNegative() {
		return decimal.Zero, nil
	}
	return balance, nil
}

func (l *Ledger) ApplyOrderToBalance(ctx context.Context, userID, restaurantID string, orderTotal, balanceUsed decimal.Decimal) error {
	_, err := l.repo.UpdateBalance(ctx, userID, restaurantID, "", l.computeFor(orderTotal, balanceUsed))
	return err
}

// ApplyJob applies job at most once; applied is false when an earlier call already did.
func (l *Ledger) ApplyJob(ctx context.Context, job *domain.LedgerJob) (bool, error) {
	return l.repo.UpdateBalance(ctx, job.UserID, job.RestaurantID, job.ID, l.computeFor(job.OrderTotal, job.BalanceUsed))
}

// ApplyJobWithRetry makes up to RetryAttempts attempts. A job that still fails
// stays queued for the reconciler with its last error recorded.
func (l *Ledger) ApplyJobWithRetry(ctx context.Context, job *domain.LedgerJob) error {
	var err error
retry:
	for attempt := 1; attempt <= l.cfg.RetryAttempts; attempt++ {
		if _, err = l.ApplyJob(ctx, job); err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrNotFound) {
			break
		}
		l.logger.Warn().Err(err).Str("job_id", job.ID).Int("attempt", attempt).Msg("ledger job attempt failed")
		if attempt == l.cfg.RetryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break retry
		case <-time.After(time.Duration(attempt) * l.cfg.RetryBackoff):
		}
	}

	if recErr := l.repo.RecordJobFailure(context.WithoutCancel(ctx), job.ID, err.Error()); recErr != nil {
		l.logger.Error().Err(recErr).Str("job_id", job.ID).Msg("failed to record ledger job failure")
	}
	l.logger.Error().Err(err).
		Str("job_id", job.ID).
		Str("user_id", job.UserID).
		Str("restaurant_id", job.RestaurantID).
		Msg("ledger job left queued for reconciliation")
	return err
}

// Reconcile re-drives queued jobs once each and returns how many were applied.
func (l *Ledger) Reconcile(ctx context.Context, limit int) (int, error) {
	jobs, err := l.repo.ListQueuedJobs(ctx, limit)
	if err != nil {
		return 0, err
	}

	applied := 0
	for i := range jobs {
		job := &jobs[i]
		ok, err := l.ApplyJob(ctx, job)
		if err != nil {
			l.logger.Error().Err(err).Str("job_id", job.ID).Int("attempts", job.Attempts+1).Msg("reconcile ledger job failed")
			if recErr := l.repo.RecordJobFailure(ctx, job.ID, err.Error()); recErr != nil {
				l.logger.Error().Err(recErr).Str("job_id", job.ID).Msg("failed to record ledger job failure")
			}
			continue
		}
		if ok {
			applied++
		}
	}
	return applied, nil
}

func (l *Ledger) Balances(ctx context.Context, session *identity.Session) ([]domain.UserBalance, error) {
	if !session.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return l.repo.ListBalances(ctx, session.UserID())
}

func (l *Ledger) PendingJobs(ctx context.Context, session *identity.Session) ([]domain.LedgerJob, error) {
	if !session.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if !identity.IsAdmin(session.Profile) {
		return nil, domain.ErrPermissionDenied
	}
	return l.repo.ListQueuedJobs(ctx, 500)
}
