package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tabletap/report-svc/internal/domain"
)

// SalesRepository reads finalized orders straight from order-svc's tables. It
// backs reports when the Redis counters are unavailable or were never built,
// and is the reference settled days are reconciled against.
type SalesRepository struct {
	db *sql.DB
}

func NewSalesRepository(db *sql.DB) *SalesRepository {
	return &SalesRepository{db: db}
}

const dailySalesQuery = `
	SELECT to_char(o.waiter_confirmed_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
		COALESCE(SUM(o.final_total), 0),
		COUNT(*),
		COALESCE(SUM((SELECT SUM(oi.quantity) FROM order_items oi WHERE oi.order_id = o.id)), 0)
	FROM orders o
	WHERE o.restaurant_id = $1 AND o.waiter_confirmed_at >= $2 AND o.waiter_confirmed_at < $3
	GROUP BY day
	ORDER BY day`

// DailySales returns only the days in [from, to) that had at least one order.
func (r *SalesRepository) DailySales(ctx context.Context, restaurantID string, from, to time.Time) ([]domain.DailySales, error) {
	rows, err := r.db.QueryContext(ctx, dailySalesQuery, restaurantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query daily sales: %w", err)
	}
	defer rows.Close()

	var days []domain.DailySales
	for rows.Next() {
		var day domain.DailySales
		if err := rows.Scan(&day.Date, &day.Revenue, &day.Orders, &day.Items); err != nil {
			return nil, fmt.Errorf("scan daily sales: %w", err)
		}
		days = append(days, day)
	}
	return days, rows.Err()
}
