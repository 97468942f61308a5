package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"tabletap/pkg/authtoken"
	"tabletap/report-svc/internal/domain"
	"tabletap/report-svc/internal/mocks"
	"tabletap/report-svc/internal/service"
	"tabletap/report-svc/internal/storage"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var reportNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func claimsFor(role, restaurantID string) *authtoken.Claims {
	claims := &authtoken.Claims{Role: role, RestaurantID: restaurantID}
	claims.Subject = "user-1"
	return claims
}

func sameInstant(expected time.Time) interface{} {
	return mock.MatchedBy(func(actual time.Time) bool { return actual.Equal(expected) })
}

func TestReportService_Authorization(t *testing.T) {
	tests := []struct {
		name          string
		claims        *authtoken.Claims
		period        domain.Range
		expectedError error
	}{
		{name: "anonymous", claims: nil, period: domain.RangeDaily, expectedError: domain.ErrUnauthenticated},
		{name: "customer", claims: claimsFor("customer", ""), period: domain.RangeDaily, expectedError: domain.ErrPermissionDenied},
		{name: "waiter", claims: claimsFor("waiter", "rest-1"), period: domain.RangeDaily, expectedError: domain.ErrPermissionDenied},
		{name: "owner_of_other", claims: claimsFor(domain.RoleBusinessOwner, "rest-2"), period: domain.RangeDaily, expectedError: domain.ErrPermissionDenied},
		{name: "owner_without_restaurant", claims: claimsFor(domain.RoleBusinessOwner, ""), period: domain.RangeDaily, expectedError: domain.ErrPermissionDenied},
		{name: "owner", claims: claimsFor(domain.RoleBusinessOwner, "rest-1"), period: domain.RangeWeekly},
		{name: "admin", claims: claimsFor(domain.RoleAdmin, ""), period: domain.RangeMonthly},
		{name: "unknown_range", claims: claimsFor(domain.RoleAdmin, ""), period: domain.Range("yearly"), expectedError: domain.ErrInvalidRange},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, cache := setupCache(t)
			svc := service.NewReportService(cache, nil, zerolog.Nop()).WithClock(func() time.Time { return reportNow })

			report, err := svc.Sales(context.Background(), testCase.claims, "rest-1", testCase.period)
			if testCase.expectedError != nil {
				assert.ErrorIs(t, err, testCase.expectedError)
				return
			}
			require.NoError(t, err)
			days, _ := testCase.period.Days()
			assert.Len(t, report.Days, days)
			assert.Equal(t, "2026-03-10", report.To)
		})
	}
}

func TestReportService_WeeklyFromCache(t *testing.T) {
	ctx := context.Background()
	_, cache := setupCache(t)
	for _, event := range []domain.OrderEvent{
		sale("o-1", "rest-1", "20", 2, reportNow),
		sale("o-2", "rest-1", "5.50", 1, reportNow.Add(-time.Hour)),
		sale("o-3", "rest-1", "12", 3, reportNow.AddDate(0, 0, -5)),
		sale("o-4", "rest-1", "100", 1, reportNow.AddDate(0, 0, -7)),
		sale("o-5", "rest-2", "70", 1, reportNow),
	} {
		_, err := cache.RecordSale(ctx, event)
		require.NoError(t, err)
	}

	fallback := mocks.NewSalesSource(t)
	settledFrom := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	settledTo := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	fallback.On("DailySales", mock.Anything, "rest-1", sameInstant(settledFrom), sameInstant(settledTo)).Return([]domain.DailySales{
		{Date: "2026-03-05", Revenue: decimal.RequireFromString("12"), Orders: 1, Items: 3},
	}, nil).Once()
	svc := service.NewReportService(cache, fallback, zerolog.Nop()).WithClock(func() time.Time { return reportNow })

	report, err := svc.Sales(ctx, claimsFor(domain.RoleBusinessOwner, "rest-1"), "rest-1", domain.RangeWeekly)
	require.NoError(t, err)

	// settled days are checked once; the second read stays on the counters
	again, err := svc.Sales(ctx, claimsFor(domain.RoleBusinessOwner, "rest-1"), "rest-1", domain.RangeWeekly)
	require.NoError(t, err)
	assertDecimal(t, "37.5", again.Revenue)

	assert.Equal(t, service.SourceCache, report.Source)
	assert.Equal(t, "2026-03-04", report.From)
	assert.Equal(t, "2026-03-10", report.To)
	require.Len(t, report.Days, 7)
	assertDecimal(t, "37.5", report.Revenue)
	assert.Equal(t, int64(3), report.Orders)
	assert.Equal(t, int64(6), report.Items)
	assertDecimal(t, "12", report.Days[1].Revenue)
	assertDecimal(t, "25.5", report.Days[6].Revenue)
}

func TestReportService_FallsBackToDatabase(t *testing.T) {
	ctx := context.Background()
	mr, cache := setupCache(t)

	tests := []struct {
		name       string
		cacheDown  bool
		fallbackOK bool
		wantErr    bool
	}{
		{name: "cache_empty", fallbackOK: true},
		{name: "cache_down", cacheDown: true, fallbackOK: true},
		{name: "both_failing", cacheDown: true, wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			if testCase.cacheDown {
				mr.Close()
			}

			from := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
			to := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
			fallback := mocks.NewSalesSource(t)
			if testCase.fallbackOK {
				fallback.On("DailySales", mock.Anything, "rest-1", sameInstant(from), sameInstant(to)).Return([]domain.DailySales{
					{Date: "2026-03-09", Revenue: decimal.RequireFromString("12.5"), Orders: 1, Items: 2},
				}, nil).Once()
			} else {
				fallback.On("DailySales", mock.Anything, "rest-1", sameInstant(from), sameInstant(to)).Return(nil, errors.New("db down")).Once()
			}

			svc := service.NewReportService(cache, fallback, zerolog.Nop()).WithClock(func() time.Time { return reportNow })
			report, err := svc.Sales(ctx, claimsFor(domain.RoleAdmin, ""), "rest-1", domain.RangeWeekly)
			if testCase.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, service.SourceDatabase, report.Source)
			require.Len(t, report.Days, 7)
			assertDecimal(t, "12.5", report.Days[5].Revenue)
			assertDecimal(t, "0", report.Days[0].Revenue)
			assertDecimal(t, "12.5", report.Revenue)
			assert.Equal(t, int64(2), report.Items)
		})
	}
}

func TestReportService_CacheDownWithoutFallback(t *testing.T) {
	mr, cache := setupCache(t)
	mr.Close()

	svc := service.NewReportService(cache, nil, zerolog.Nop()).WithClock(func() time.Time { return reportNow })
	_, err := svc.Sales(context.Background(), claimsFor(domain.RoleAdmin, ""), "rest-1", domain.RangeDaily)
	assert.Error(t, err)
}

func TestReportService_ReconcilesLostEvents(t *testing.T) {
	ctx := context.Background()
	settledFrom := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	settledTo := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		dbErr       error
		wantRevenue string
		wantOrders  int64
		wantStored  string
	}{
		{name: "database_has_more_orders", wantRevenue: "48", wantOrders: 5, wantStored: "2000"},
		{name: "database_down_keeps_counters", dbErr: errors.New("db down"), wantRevenue: "37.5", wantOrders: 3, wantStored: "1200"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			mr, cache := setupCache(t)
			for _, event := range []domain.OrderEvent{
				sale("o-1", "rest-1", "20", 2, reportNow),
				sale("o-2", "rest-1", "5.50", 1, reportNow.Add(-time.Hour)),
				sale("o-3", "rest-1", "12", 3, reportNow.AddDate(0, 0, -5)),
			} {
				_, err := cache.RecordSale(ctx, event)
				require.NoError(t, err)
			}

			fallback := mocks.NewSalesSource(t)
			call := fallback.On("DailySales", mock.Anything, "rest-1", sameInstant(settledFrom), sameInstant(settledTo))
			if testCase.dbErr != nil {
				call.Return(nil, testCase.dbErr).Once()
			} else {
				// o-4 confirmed on 2026-03-05 and a 2.50 order on 2026-03-07 never reached the counters
				call.Return([]domain.DailySales{
					{Date: "2026-03-05", Revenue: decimal.RequireFromString("20"), Orders: 2, Items: 5},
					{Date: "2026-03-07", Revenue: decimal.RequireFromString("2.50"), Orders: 1, Items: 1},
				}, nil).Once()
			}

			svc := service.NewReportService(cache, fallback, zerolog.Nop()).WithClock(func() time.Time { return reportNow })
			report, err := svc.Sales(ctx, claimsFor(domain.RoleAdmin, ""), "rest-1", domain.RangeWeekly)
			require.NoError(t, err)

			assert.Equal(t, service.SourceCache, report.Source)
			assertDecimal(t, testCase.wantRevenue, report.Revenue)
			assert.Equal(t, testCase.wantOrders, report.Orders)
			assert.Equal(t, testCase.wantStored, mr.HGet(storage.DailyKey("2026-03-05", "rest-1"), "revenue_cents"))
			assert.Equal(t, testCase.dbErr == nil, mr.Exists(storage.VerifiedKey("2026-03-05", "rest-1")))
		})
	}
}
