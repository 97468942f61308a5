package service

import (
	"context"
	"time"

	"tabletap/pkg/authtoken"
	"tabletap/report-svc/internal/domain"
	"tabletap/report-svc/internal/storage"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	SourceCache    = "cache"
	SourceDatabase = "database"

	// settleDays is how long a day stays open to late order events before
	// its counters are checked against the database.
	settleDays = 2
)

type ReportService struct {
	cache    SalesCache
	fallback SalesSource
	logger   zerolog.Logger
	now      func() time.Time
}

// NewReportService reads from cache first. fallback may be nil.
func NewReportService(cache SalesCache, fallback SalesSource, logger zerolog.Logger) *ReportService {
	return &ReportService{
		cache:    cache,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock is used by tests to pin "today".
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

func canReadSales(claims *authtoken.Claims, restaurantID string) bool {
	switch claims.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleBusinessOwner:
		return claims.RestaurantID != "" && claims.RestaurantID == restaurantID
	}
	return false
}

// Sales summarizes confirmed orders per UTC day over the range ending today.
func (s *ReportService) Sales(ctx context.Context, claims *authtoken.Claims, restaurantID string, period domain.Range) (*domain.SalesReport, error) {
	if claims == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !canReadSales(claims, restaurantID) {
		return nil, domain.ErrPermissionDenied
	}
	n, err := period.Days()
	if err != nil {
		return nil, err
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -(n - 1))
	dates := make([]string, n)
	for i := range dates {
		dates[i] = from.AddDate(0, 0, i).Format(storage.DateLayout)
	}

	days, source, err := s.dailySales(ctx, restaurantID, dates, from, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	report := &domain.SalesReport{
		RestaurantID: restaurantID,
		Range:        period,
		From:         dates[0],
		To:           dates[len(dates)-1],
		Revenue:      decimal.Zero,
		Days:         days,
		Source:       source,
	}
	for _, day := range days {
		report.Revenue = report.Revenue.Add(day.Revenue)
		report.Orders += day.Orders
		report.Items += day.Items
	}
	return report, nil
}

func (s *ReportService) dailySales(ctx context.Context, restaurantID string, dates []string, from, to time.Time) ([]domain.DailySales, string, error) {
	has, err := s.cache.HasAny(ctx, restaurantID, dates)
	if err != nil {
		s.logger.Warn().Err(err).Str("restaurant_id", restaurantID).Msg("sales cache unavailable")
	}
	if err == nil && (has || s.fallback == nil) {
		var days []domain.DailySales
		days, err = s.cache.DailySales(ctx, restaurantID, dates)
		if err == nil {
			s.reconcile(ctx, restaurantID, days)
			return days, SourceCache, nil
		}
		s.logger.Warn().Err(err).Str("restaurant_id", restaurantID).Msg("read sales cache")
	}
	if s.fallback == nil {
		return nil, "", err
	}

	days, err := s.databaseSales(ctx, restaurantID, dates, from, to)
	if err != nil {
		return nil, "", err
	}
	return days, SourceDatabase, nil
}

func (s *ReportService) databaseSales(ctx context.Context, restaurantID string, dates []string, from, to time.Time) ([]domain.DailySales, error) {
	rows, err := s.fallback.DailySales(ctx, restaurantID, from, to)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]domain.DailySales, len(rows))
	for _, row := range rows {
		byDate[row.Date] = row
	}
	days := make([]domain.DailySales, len(dates))
	for i, date := range dates {
		day, ok := byDate[date]
		if !ok {
			day = domain.DailySales{Date: date, Revenue: decimal.Zero}
		}
		days[i] = day
	}
	return days, nil
}

// reconcile replaces the cached counters of settled days with database totals,
// once per day, so a lost order event does not undercount a report forever.
// Days inside the settle window are reported from the counters as they are.
func (s *ReportService) reconcile(ctx context.Context, restaurantID string, days []domain.DailySales) {
	if s.fallback == nil {
		return
	}
	cutoff := s.now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -settleDays).Format(storage.DateLayout)
	var settled []string
	for _, day := range days {
		if day.Date <= cutoff {
			settled = append(settled, day.Date)
		}
	}
	if len(settled) == 0 {
		return
	}

	log := s.logger.With().Str("restaurant_id", restaurantID).Logger()
	pending, err := s.cache.Unverified(ctx, restaurantID, settled)
	if err != nil || len(pending) == 0 {
		if err != nil {
			log.Warn().Err(err).Msg("read verified sales days")
		}
		return
	}

	from, _ := time.Parse(storage.DateLayout, pending[0])
	to, _ := time.Parse(storage.DateLayout, pending[len(pending)-1])
	truth, err := s.databaseSales(ctx, restaurantID, pending, from, to.AddDate(0, 0, 1))
	if err != nil {
		log.Warn().Err(err).Msg("sales reconciliation skipped")
		return
	}

	index := make(map[string]int, len(days))
	for i, day := range days {
		index[day.Date] = i
	}
	for _, day := range truth {
		i := index[day.Date]
		if days[i].Orders != day.Orders || !days[i].Revenue.Equal(day.Revenue) || days[i].Items != day.Items {
			log.Warn().Str("date", day.Date).
				Int64("cached_orders", days[i].Orders).
				Int64("orders", day.Orders).
				Msg("sales counters corrected from database")
		}
		if err := s.cache.StoreVerified(ctx, restaurantID, day); err != nil {
			log.Warn().Err(err).Str("date", day.Date).Msg("store verified sales day")
		}
		days[i] = day
	}
}
