package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Restaurant struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Address           string          `json:"address"`
	Description       string          `json:"description"`
	ImageURL          string          `json:"image_url"`
	Latitude          float64         `json:"latitude"`
	Longitude         float64         `json:"longitude"`
	LoyaltyPercentage decimal.Decimal `json:"loyalty_percentage"`
	CreatedAt         time.Time       `json:"created_at"`
}

type MenuItem struct {
	ID            string           `json:"id"`
	RestaurantID  string           `json:"restaurant_id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Category      string           `json:"category"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
	ImageURL      string           `json:"image_url"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Category groups menu items. Items refer to it by name.
type Category struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

// EffectivePrice is the price a cart line is charged at.
func (m MenuItem) EffectivePrice() decimal.Decimal {
	if m.DiscountPrice != nil {
		return *m.DiscountPrice
	}
	return m.Price
}

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountAmount  DiscountType = "amount"
)

// DiscountedPrice never goes below zero.
func DiscountedPrice(price decimal.Decimal, kind DiscountType, value decimal.Decimal) (decimal.Decimal, error) {
	var result decimal.Decimal
	switch kind {
	case DiscountPercent:
		result = price.Mul(decimal.NewFromInt(1).Sub(value.Div(decimal.NewFromInt(100))))
	case DiscountAmount:
		result = price.Sub(value)
	default:
		return decimal.Zero, ErrInvalidArgument
	}
	if result.IsNegative() {
		return decimal.Zero, nil
	}
	return result.Round(2), nil
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
)

type OrderSource string

const (
	OrderSourceQR     OrderSource = "qr"
	OrderSourceManual OrderSource = "manual"
)

type OrderItem struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func ItemsTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

type PendingOrder struct {
	ID             string          `json:"id"`
	RestaurantID   string          `json:"restaurant_id"`
	RestaurantName string          `json:"restaurant_name"`
	Items          []OrderItem     `json:"items"`
	OriginalTotal  decimal.Decimal `json:"original_total"`
	BalanceUsed    decimal.Decimal `json:"balance_used"`
	FinalTotal     decimal.Decimal `json:"final_total"`
	TableNumber    string          `json:"table_number"`
	UserID         string          `json:"user_id"`
	Status         OrderStatus     `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	ConfirmedAt    *time.Time      `json:"confirmed_at,omitempty"`
	ConfirmedBy    string          `json:"confirmed_by,omitempty"`
}

// Finalize derives the finalized order record written alongside the status flip.
func (p *PendingOrder) Finalize(confirmedBy string, at time.Time) *Order {
	return &Order{
		ID:                p.ID,
		RestaurantID:      p.RestaurantID,
		RestaurantName:    p.RestaurantName,
		Items:             p.Items,
		OriginalTotal:     p.OriginalTotal,
		BalanceUsed:       p.BalanceUsed,
		FinalTotal:        p.FinalTotal,
		TableNumber:       p.TableNumber,
		UserID:            p.UserID,
		Status:            OrderStatusConfirmed,
		Source:            OrderSourceQR,
		CreatedAt:         p.CreatedAt,
		WaiterConfirmedAt: at,
		ConfirmedBy:       confirmedBy,
	}
}

type Order struct {
	ID                string          `json:"id"`
	RestaurantID      string          `json:"restaurant_id"`
	RestaurantName    string          `json:"restaurant_name"`
	Items             []OrderItem     `json:"items"`
	OriginalTotal     decimal.Decimal `json:"original_total"`
	BalanceUsed       decimal.Decimal `json:"balance_used"`
	FinalTotal        decimal.Decimal `json:"final_total"`
	TableNumber       string          `json:"table_number"`
	UserID            string          `json:"user_id"`
	Status            OrderStatus     `json:"status"`
	Source            OrderSource     `json:"source"`
	CreatedAt         time.Time       `json:"created_at"`
	WaiterConfirmedAt time.Time       `json:"waiter_confirmed_at"`
	ConfirmedBy       string          `json:"confirmed_by"`
}

type LedgerJobStatus string

const (
	LedgerJobQueued  LedgerJobStatus = "queued"
	LedgerJobApplied LedgerJobStatus = "applied"
)

// LedgerJob is the balance update owed for one confirmed order. Its ID is the
// pending order id, so a job can be applied at most once.
type LedgerJob struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	RestaurantID string          `json:"restaurant_id"`
	OrderTotal   decimal.Decimal `json:"order_total"`
	BalanceUsed  decimal.Decimal `json:"balance_used"`
	Status       LedgerJobStatus `json:"status"`
	Attempts     int             `json:"attempts"`
	LastError    string          `json:"last_error,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	AppliedAt    *time.Time      `json:"applied_at,omitempty"`
}

type UserBalance struct {
	UserID         string          `json:"user_id"`
	RestaurantID   string          `json:"restaurant_id"`
	RestaurantName string          `json:"restaurant_name"`
	Balance        decimal.Decimal `json:"balance"`
	LastUpdated    time.Time       `json:"last_updated"`
}

// BalanceState is what the ledger reads under the balance row lock.
type BalanceState struct {
	Current           decimal.Decimal
	LoyaltyPercentage decimal.Decimal
	RestaurantName    string
}

type OrderEventType string

const (
	EventOrderCreated   OrderEventType = "order_created"
	EventOrderConfirmed OrderEventType = "order_confirmed"
)

// OrderEvent is published on the live status bus and the order event log.
type OrderEvent struct {
	Type          OrderEventType  `json:"type"`
	OrderID       string          `json:"order_id"`
	RestaurantID  string          `json:"restaurant_id"`
	UserID        string          `json:"user_id,omitempty"`
	Status        OrderStatus     `json:"status"`
	Source        OrderSource     `json:"source,omitempty"`
	OriginalTotal decimal.Decimal `json:"original_total"`
	FinalTotal    decimal.Decimal `json:"final_total"`
	ItemCount     int             `json:"item_count"`
	Timestamp     time.Time       `json:"timestamp"`
}
