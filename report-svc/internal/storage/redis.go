package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"tabletap/report-svc/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"

	dailyTTL = 400 * 24 * time.Hour
	seenTTL  = 30 * 24 * time.Hour
)

// recordSale marks the order as counted and bumps the day's counters in one
// step, so a redelivered event never counts twice.
var recordSale = redis.NewScript(`
if redis.call('SET', KEYS[1], '1', 'NX', 'EX', ARGV[4]) then
	redis.call('HINCRBY', KEYS[2], 'revenue_cents', ARGV[1])
	redis.call('HINCRBY', KEYS[2], 'orders', 1)
	redis.call('HINCRBY', KEYS[2], 'items', ARGV[2])
	redis.call('EXPIRE', KEYS[2], ARGV[3])
	return 1
end
return 0
`)

type SalesCache struct {
	rdb *redis.Client
}

func NewSalesCache(rdb *redis.Client) *SalesCache {
	return &SalesCache{rdb: rdb}
}

func DailyKey(date, restaurantID string) string {
	return fmt.Sprintf("sales:daily:%s:%s", date, restaurantID)
}

func SeenKey(orderID string) string {
	return "sales:seen:" + orderID
}

// VerifiedKey marks a day whose counters were checked against the database.
func VerifiedKey(date, restaurantID string) string {
	return fmt.Sprintf("sales:verified:%s:%s", date, restaurantID)
}

// RecordSale reports whether the event was counted; false means it was seen before.
func (c *SalesCache) RecordSale(ctx context.Context, event domain.OrderEvent) (bool, error) {
	date := event.Timestamp.UTC().Format(DateLayout)
	cents := event.FinalTotal.Shift(2).Round(0).IntPart()

	counted, err := recordSale.Run(ctx, c.rdb,
		[]string{SeenKey(event.OrderID), DailyKey(date, event.RestaurantID)},
		cents, event.ItemCount, int64(dailyTTL/time.Second), int64(seenTTL/time.Second),
	).Int()
	if err != nil {
		return false, fmt.Errorf("record sale %s: %w", event.OrderID, err)
	}
	return counted == 1, nil
}

// DailySales reads one entry per date. Dates without any sales come back zeroed.
func (c *SalesCache) DailySales(ctx context.Context, restaurantID string, dates []string) ([]domain.DailySales, error) {
	pipe := c.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(dates))
	for i, date := range dates {
		cmds[i] = pipe.HGetAll(ctx, DailyKey(date, restaurantID))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("read daily sales: %w", err)
	}

	days := make([]domain.DailySales, len(dates))
	for i, cmd := range cmds {
		fields := cmd.Val()
		cents, _ := strconv.ParseInt(fields["revenue_cents"], 10, 64)
		orders, _ := strconv.ParseInt(fields["orders"], 10, 64)
		items, _ := strconv.ParseInt(fields["items"], 10, 64)
		days[i] = domain.DailySales{
			Date:    dates[i],
			Revenue: decimal.New(cents, -2),
			Orders:  orders,
			Items:   items,
		}
	}
	return days, nil
}

// HasAny reports whether at least one of the given days has a counter hash.
func (c *SalesCache) HasAny(ctx context.Context, restaurantID string, dates []string) (bool, error) {
	keys := make([]string, len(dates))
	for i, date := range dates {
		keys[i] = DailyKey(date, restaurantID)
	}
	n, err := c.rdb.Exists(ctx, keys...).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Unverified returns the dates whose counters were never checked against the database.
func (c *SalesCache) Unverified(ctx context.Context, restaurantID string, dates []string) ([]string, error) {
	pipe := c.rdb.Pipeline()
	cmds := make([]*redis.IntCmd, len(dates))
	for i, date := range dates {
		cmds[i] = pipe.Exists(ctx, VerifiedKey(date, restaurantID))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("read verified days: %w", err)
	}
	var pending []string
	for i, cmd := range cmds {
		if cmd.Val() == 0 {
			pending = append(pending, dates[i])
		}
	}
	return pending, nil
}

// StoreVerified overwrites a day's counters with the given totals and marks the day verified.
func (c *SalesCache) StoreVerified(ctx context.Context, restaurantID string, day domain.DailySales) error {
	key := DailyKey(day.Date, restaurantID)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"revenue_cents", day.Revenue.Shift(2).Round(0).IntPart(),
			"orders", day.Orders,
			"items", day.Items,
		)
		pipe.Expire(ctx, key, dailyTTL)
		pipe.Set(ctx, VerifiedKey(day.Date, restaurantID), "1", dailyTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store verified day %s: %w", day.Date, err)
	}
	return nil
}
