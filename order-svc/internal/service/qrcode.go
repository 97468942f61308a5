package service

import (
	"encoding/json"
	"strings"

	"tabletap/order-svc/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

// ConfirmationToken is what the customer's QR code carries to the waiter.
// Only PendingOrderID is trusted; the rest is display data for the scanner.
type ConfirmationToken struct {
	PendingOrderID string             `json:"pendingOrderId"`
	RestaurantID   string             `json:"restaurantId"`
	RestaurantName string             `json:"restaurantName"`
	TableNumber    string             `json:"tableNumber"`
	Items          []domain.OrderItem `json:"items"`
	Total          decimal.Decimal    `json:"total"`
}

func NewConfirmationToken(order *domain.PendingOrder) ConfirmationToken {
	return ConfirmationToken{
		PendingOrderID: order.ID,
		RestaurantID:   order.RestaurantID,
		RestaurantName: order.RestaurantName,
		TableNumber:    order.TableNumber,
		Items:          order.Items,
		Total:          order.FinalTotal,
	}
}

func (t ConfirmationToken) Encode() (string, error) {
	payload, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// DecodeConfirmationToken accepts a scanned JSON token or an order id typed in by hand.
func DecodeConfirmationToken(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.InvalidArgument("token required")
	}

	if strings.HasPrefix(raw, "{") {
		var token ConfirmationToken
		if err := json.Unmarshal([]byte(raw), &token); err != nil {
			return "", domain.InvalidArgument("malformed token")
		}
		raw = strings.TrimSpace(token.PendingOrderID)
	}

	if _, err := uuid.Parse(raw); err != nil {
		return "", domain.InvalidArgument("malformed token")
	}
	return raw, nil
}

type QRGenerator interface {
	Generate(payload string) ([]byte, error)
}

type DefaultQRGenerator struct {
	Size int
}

func (g DefaultQRGenerator) Generate(payload string) ([]byte, error) {
	size := g.Size
	if size == 0 {
		size = 256
	}
	return qrcode.Encode(payload, qrcode.Medium, size)
}
