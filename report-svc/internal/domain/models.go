package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleBusinessOwner = "businessOwner"
	RoleAdmin         = "admin"

	EventOrderConfirmed = "order_confirmed"
)

// OrderEvent is the subset of the order event log this service reads.
type OrderEvent struct {
	Type         string          `json:"type"`
	OrderID      string          `json:"order_id"`
	RestaurantID string          `json:"restaurant_id"`
	Source       string          `json:"source,omitempty"`
	FinalTotal   decimal.Decimal `json:"final_total"`
	ItemCount    int             `json:"item_count"`
	Timestamp    time.Time       `json:"timestamp"`
}

type Range string

const (
	RangeDaily   Range = "daily"
	RangeWeekly  Range = "weekly"
	RangeMonthly Range = "monthly"
)

// Days is the number of calendar days a range covers, ending today.
func (r Range) Days() (int, error) {
	switch r {
	case RangeDaily:
		return 1, nil
	case RangeWeekly:
		return 7, nil
	case RangeMonthly:
		return 30, nil
	}
	return 0, ErrInvalidRange
}

type DailySales struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
	Items   int64           `json:"items"`
}

type SalesReport struct {
	RestaurantID string          `json:"restaurant_id"`
	Range        Range           `json:"range"`
	From         string          `json:"from"`
	To           string          `json:"to"`
	Revenue      decimal.Decimal `json:"revenue"`
	Orders       int64           `json:"orders"`
	Items        int64           `json:"items"`
	Days         []DailySales    `json:"days"`
	Source       string          `json:"source"`
}
