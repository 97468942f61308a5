package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tabletap/order-svc/internal/domain"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	maxTxAttempts = 5
	txRetryDelay  = 20 * time.Millisecond
)

// serialization_failure and deadlock_detected
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

func (r *PostgresRepository) GetBalance(ctx context.Context, userID, restaurantID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.DB.QueryRowContext(ctx,
		"SELECT balance FROM user_balances WHERE user_id = $1 AND restaurant_id = $2", userID, restaurantID).
		Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	return balance, err
}

func (r *PostgresRepository) ListBalances(ctx context.Context, userID string) ([]domain.UserBalance, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id, restaurant_id, COALESCE(restaurant_name, ''), balance, last_updated
		FROM user_balances
		WHERE user_id = $1
		ORDER BY last_updated DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := []domain.UserBalance{}
	for rows.Next() {
		var b domain.UserBalance
		if err := rows.Scan(&b.UserID, &b.RestaurantID, &b.RestaurantName, &b.Balance, &b.LastUpdated); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// UpdateBalance runs compute against the locked balance row and stores the result.
// When jobID is set the job row is locked first and the update is skipped if the
// job was already applied; applied reports whether this call wrote the balance.
func (r *PostgresRepository) UpdateBalance(ctx context.Context, userID, restaurantID, jobID string,
	compute func(domain.BalanceState) decimal.Decimal) (bool, error) {
	for attempt := 1; ; attempt++ {
		applied, err := r.updateBalanceOnce(ctx, userID, restaurantID, jobID, compute)
		if err == nil || !isRetryable(err) || attempt == maxTxAttempts {
			return applied, err
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(time.Duration(attempt) * txRetryDelay):
		}
	}
}

func (r *PostgresRepository) updateBalanceOnce(ctx context.Context, userID, restaurantID, jobID string,
	compute func(domain.BalanceState) decimal.Decimal) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if jobID != "" {
		var status string
		if err := tx.QueryRowContext(ctx, "SELECT status FROM ledger_jobs WHERE id = $1 FOR UPDATE", jobID).Scan(&status); err != nil {
			return false, notFound(err)
		}
		if domain.LedgerJobStatus(status) == domain.LedgerJobApplied {
			return false, nil
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_balances (user_id, restaurant_id, balance)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id, restaurant_id) DO NOTHING`, userID, restaurantID); err != nil {
		return false, err
	}

	var state domain.BalanceState
	if err := tx.QueryRowContext(ctx,
		"SELECT balance FROM user_balances WHERE user_id = $1 AND restaurant_id = $2 FOR UPDATE", userID, restaurantID).
		Scan(&state.Current); err != nil {
		return false, err
	}

	err = tx.QueryRowContext(ctx, "SELECT loyalty_percentage, name FROM restaurants WHERE id = $1", restaurantID).
		Scan(&state.LoyaltyPercentage, &state.RestaurantName)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	next := compute(state)
	if _, err := tx.ExecContext(ctx, `
		UPDATE user_balances
		SET balance = $3, restaurant_name = COALESCE(NULLIF($4, ''), restaurant_name), last_updated = now()
		WHERE user_id = $1 AND restaurant_id = $2`,
		userID, restaurantID, next, state.RestaurantName); err != nil {
		return false, err
	}

	if jobID != "" {
		if _, err := tx.ExecContext(ctx, `
			UPDATE ledger_jobs
			SET status = 'applied', attempts = attempts + 1, last_error = NULL, applied_at = now()
			WHERE id = $1`, jobID); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *PostgresRepository) ListQueuedJobs(ctx context.Context, limit int) ([]domain.LedgerJob, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, restaurant_id, order_total, balance_used, status, attempts, COALESCE(last_error, ''), created_at
		FROM ledger_jobs
		WHERE status = 'queued'
		ORDER BY created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []domain.LedgerJob{}
	for rows.Next() {
		var job domain.LedgerJob
		var status string
		if err := rows.Scan(&job.ID, &job.UserID, &job.RestaurantID, &job.OrderTotal, &job.BalanceUsed, &status,
			&job.Attempts, &job.LastError, &job.CreatedAt); err != nil {
			return nil, err
		}
		job.Status = domain.LedgerJobStatus(status)
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *PostgresRepository) RecordJobFailure(ctx context.Context, jobID, cause string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE ledger_jobs SET attempts = attempts + 1, last_error = $2
		WHERE id = $1 AND status = 'queued'`, jobID, cause)
	return err
}
