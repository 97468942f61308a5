package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tabletap/order-svc/internal/domain"
	"tabletap/order-svc/internal/mocks"
	"tabletap/order-svc/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestComputeNewBalance(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		pct      string
		total    string
		used     string
		expected string
	}{
		{name: "earn_only", current: "0", pct: "10", total: "25", used: "0", expected: "2.5"},
		{name: "spend_and_earn_on_original_total", current: "30", pct: "10", total: "25", used: "25", expected: "7.5"},
		{name: "zero_percentage", current: "12", pct: "0", total: "100", used: "2", expected: "10"},
		{name: "may_go_negative", current: "1", pct: "0", total: "10", used: "5", expected: "-4"},
		{name: "fractional_percentage", current: "0", pct: "2.5", total: "40", used: "0", expected: "1"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			got := service.ComputeNewBalance(
				decimal.RequireFromString(testCase.current),
				decimal.RequireFromString(testCase.pct),
				decimal.RequireFromString(testCase.total),
				decimal.RequireFromString(testCase.used),
			)
			assertDecimal(t, testCase.expected, got)
		})
	}
}

func TestLedger_AccrualDisabled(t *testing.T) {
	cfg := defaultLedgerConfig()
	cfg.AccrualEnabled = false
	f := newFixture(t, cfg)
	f.seedBalance(t, "u1", restaurantID, decimal.NewFromInt(10))

	err := f.ledger.ApplyOrderToBalance(context.Background(), "u1", restaurantID, decimal.NewFromInt(25), decimal.NewFromInt(4))
	require.NoError(t, err)
	assertDecimal(t, "6", f.balance(t, "u1", restaurantID))
}

func TestLedger_Linearity_Concurrent(t *testing.T) {
	f := newFixture(t, defaultLedgerConfig())
	ctx := context.Background()

	const workers = 40
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			used := decimal.Zero
			if i%2 == 1 {
				used = decimal.NewFromInt(1)
			}
			// Each call earns 1 (10% of 10) and odd calls spend 1.
			assert.NoError(t, f.ledger.ApplyOrderToBalance(ctx, "u1", restaurantID, decimal.NewFromInt(10), used))
		}(i)
	}
	wg.Wait()

	// Σearned - Σused = 40 - 20
	assertDecimal(t, "20", f.balance(t, "u1", restaurantID))

	balances, err := f.ledger.Balances(ctx, customer("u1"))
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "Kebapçı", balances[0].RestaurantName)
}

func TestLedger_ApplyJobWithRetry(t *testing.T) {
	ctx := context.Background()
	job := &domain.LedgerJob{ID: "job-1", UserID: "u1", RestaurantID: restaurantID, OrderTotal: decimal.NewFromInt(25), BalanceUsed: decimal.Zero}
	transient := errors.New("could not serialize access")

	tests := []struct {
		name          string
		prepareMocks  func(repo *mocks.LedgerRepository)
		expectedError error
	}{
		{
			name: "succeeds_after_transient_failure",
			prepareMocks: func(repo *mocks.LedgerRepository) {
				repo.On("UpdateBalance", ctx, "u1", restaurantID, "job-1", mock.Anything).Return(false, transient).Once()
				repo.On("UpdateBalance", ctx, "u1", restaurantID, "job-1", mock.Anything).Return(true, nil).Once()
			},
		},
		{
			name: "exhausted_attempts_leave_job_queued",
			prepareMocks: func(repo *mocks.LedgerRepository) {
				repo.On("UpdateBalance", ctx, "u1", restaurantID, "job-1", mock.Anything).Return(false, transient).Times(3)
				repo.On("RecordJobFailure", mock.Anything, "job-1", transient.Error()).Return(nil).Once()
			},
			expectedError: transient,
		},
		{
			name: "missing_job_is_not_retried",
			prepareMocks: func(repo *mocks.LedgerRepository) {
				repo.On("UpdateBalance", ctx, "u1", restaurantID, "job-1", mock.Anything).Return(false, domain.ErrNotFound).Once()
				repo.On("RecordJobFailure", mock.Anything, "job-1", domain.ErrNotFound.Error()).Return(nil).Once()
			},
			expectedError: domain.ErrNotFound,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo := mocks.NewLedgerRepository(t)
			testCase.prepareMocks(repo)
			ledger := service.NewLedger(repo, defaultLedgerConfig(), zerolog.Nop())

			err := ledger.ApplyJobWithRetry(ctx, job)
			if testCase.expectedError == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, testCase.expectedError)
		})
	}
}

func TestLedger_ApplyJob_ComputesFromLockedState(t *testing.T) {
	repo := mocks.NewLedgerRepository(t)
	ledger := service.NewLedger(repo, defaultLedgerConfig(), zerolog.Nop())
	job := &domain.LedgerJob{ID: "job-2", UserID: "u1", RestaurantID: restaurantID, OrderTotal: decimal.NewFromInt(25), BalanceUsed: decimal.NewFromInt(25)}

	var computed decimal.Decimal
	repo.On("UpdateBalance", mock.Anything, "u1", restaurantID, "job-2", mock.Anything).
		Run(func(args mock.Arguments) {
			compute := args.Get(4).(func(domain.BalanceState) decimal.Decimal)
			computed = compute(domain.BalanceState{Current: decimal.NewFromInt(30), LoyaltyPercentage: decimal.NewFromInt(10)})
		}).
		Return(true, nil).Once()

	applied, err := ledger.ApplyJob(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, applied)
	assertDecimal(t, "7.5", computed)
}

func TestReconciler_RunOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultLedgerConfig())
	session := customer("u1")
	f.fillCart(t, session)
	created, err := f.orders.CreateOrder(ctx, session, "7", decimal.Zero)
	require.NoError(t, err)

	// Confirm in storage only, as if the process died before the ledger step.
	_, job, err := f.store.ConfirmPendingOrder(ctx, created.Order.ID, "waiter-"+restaurantID, time.Now())
	require.NoError(t, err)
	require.NotNil(t, job)
	assertDecimal(t, "0", f.balance(t, "u1", restaurantID))

	queued, err := f.ledger.PendingJobs(ctx, admin())
	require.NoError(t, err)
	require.Len(t, queued, 1)

	_, err = f.ledger.PendingJobs(ctx, waiter(restaurantID))
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	reconciler := service.NewReconciler(f.ledger, time.Minute, zerolog.Nop())
	assert.Equal(t, 1, reconciler.RunOnce(ctx))
	assertDecimal(t, "2.5", f.balance(t, "u1", restaurantID))

	assert.Equal(t, 0, reconciler.RunOnce(ctx))
	assertDecimal(t, "2.5", f.balance(t, "u1", restaurantID))

	// Re-applying a finished job is a no-op.
	applied, err := f.ledger.ApplyJob(ctx, job)
	require.NoError(t, err)
	assert.False(t, applied)
	assertDecimal(t, "2.5", f.balance(t, "u1", restaurantID))
}

func TestReconciler_RunStopsOnCancel(t *testing.T) {
	f := newFixture(t, defaultLedgerConfig())
	reconciler := service.NewReconciler(f.ledger, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reconciler.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}
