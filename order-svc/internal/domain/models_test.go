package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscountedPrice(t *testing.T) {
	tests := []struct {
		name    string
		price   string
		kind    DiscountType
		value   string
		want    string
		wantErr bool
	}{
		{name: "percent", price: "20", kind: DiscountPercent, value: "25", want: "15"},
		{name: "amount", price: "20", kind: DiscountAmount, value: "4.5", want: "15.5"},
		{name: "amount floors at zero", price: "5", kind: DiscountAmount, value: "9", want: "0"},
		{name: "percent over hundred floors at zero", price: "5", kind: DiscountPercent, value: "150", want: "0"},
		{name: "unknown kind", price: "5", kind: "bogo", value: "1", wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := DiscountedPrice(decimal.RequireFromString(testCase.price), testCase.kind, decimal.RequireFromString(testCase.value))
			if testCase.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(testCase.want).Equal(got), "got %s", got)
		})
	}
}

func TestMenuItem_EffectivePrice(t *testing.T) {
	item := MenuItem{Price: decimal.NewFromInt(12)}
	assert.True(t, decimal.NewFromInt(12).Equal(item.EffectivePrice()))

	discount := decimal.NewFromInt(9)
	item.DiscountPrice = &discount
	assert.True(t, decimal.NewFromInt(9).Equal(item.EffectivePrice()))
}

func TestPendingOrder_Finalize(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	pending := &PendingOrder{
		ID:            "p-1",
		RestaurantID:  "r-1",
		Items:         []OrderItem{{ItemID: "burger", UnitPrice: decimal.NewFromInt(10), Quantity: 2}},
		OriginalTotal: decimal.NewFromInt(20),
		BalanceUsed:   decimal.NewFromInt(5),
		FinalTotal:    decimal.NewFromInt(15),
		TableNumber:   "7",
		UserID:        "u-1",
		Status:        OrderStatusPending,
	}

	order := pending.Finalize("w-1", at)

	assert.Equal(t, "p-1", order.ID)
	assert.Equal(t, OrderStatusConfirmed, order.Status)
	assert.Equal(t, OrderSourceQR, order.Source)
	assert.Equal(t, "w-1", order.ConfirmedBy)
	assert.Equal(t, at, order.WaiterConfirmedAt)
	assert.True(t, pending.FinalTotal.Equal(order.FinalTotal))
}
