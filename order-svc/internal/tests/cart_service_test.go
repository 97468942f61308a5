package tests

import (
	"context"
	"testing"

	"tabletap/order-svc/internal/domain"
	"tabletap/order-svc/internal/identity"
	"tabletap/order-svc/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartKey(t *testing.T) {
	tests := []struct {
		name          string
		session       *identity.Session
		expectedKey   string
		expectedError error
	}{
		{name: "authenticated", session: customer("u1"), expectedKey: "cart:user:u1"},
		{name: "anonymous", session: identity.Anonymous(" b-42 "), expectedKey: "cart:anon:b-42"},
		{name: "no_identity", session: identity.Anonymous(""), expectedError: domain.ErrInvalidArgument},
		{name: "nil_session", session: nil, expectedError: domain.ErrInvalidArgument},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			key, err := service.CartKey(testCase.session)
			if testCase.expectedError != nil {
				assert.ErrorIs(t, err, testCase.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expectedKey, key)
		})
	}
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultLedgerConfig())
	session := identity.Anonymous("browser-1")

	cart, err := f.carts.AddItem(ctx, session, restaurantID, itemA, false)
	require.NoError(t, err)
	assert.Equal(t, restaurantID, cart.RestaurantID)
	assert.Equal(t, "Kebapçı", cart.RestaurantName)

	cart, err = f.carts.AddItem(ctx, session, restaurantID, itemA, false)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assertDecimal(t, "20", cart.Total())

	_, err = f.carts.AddItem(ctx, session, otherRestID, "item-p", false)
	assert.ErrorIs(t, err, domain.ErrCartConflict)

	stored, err := f.carts.Get(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, restaurantID, stored.RestaurantID, "conflict must not change the cart")

	cart, err = f.carts.AddItem(ctx, session, otherRestID, "item-p", true)
	require.NoError(t, err)
	assert.Equal(t, otherRestID, cart.RestaurantID)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "item-p", cart.Items[0].ItemID)

	_, err = f.carts.AddItem(ctx, session, restaurantID, "missing", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCartService_UsesDiscountPrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultLedgerConfig())
	owner := sessionFor("owner-1", domain.RoleBusinessOwner, restaurantID)

	_, err := f.menu.ApplyDiscount(ctx, owner, restaurantID, itemA, domain.DiscountPercent, decimal.NewFromInt(20))
	require.NoError(t, err)

	cart, err := f.carts.AddItem(ctx, customer("u1"), restaurantID, itemA, false)
	require.NoError(t, err)
	assertDecimal(t, "8", cart.Items[0].UnitPrice)
}

func TestCartService_UpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultLedgerConfig())
	session := customer("u1")
	f.fillCart(t, session)

	cart, err := f.carts.UpdateQuantity(ctx, session, itemB, 4)
	require.NoError(t, err)
	assertDecimal(t, "40", cart.Total())

	cart, err = f.carts.UpdateQuantity(ctx, session, itemB, 0)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	cart, err = f.carts.RemoveItem(ctx, session, itemA)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Empty(t, cart.RestaurantID)

	stored, err := f.carts.Get(ctx, session)
	require.NoError(t, err)
	assert.True(t, stored.IsEmpty())
	assert.Empty(t, stored.RestaurantID)
}

func TestCartService_Clear(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultLedgerConfig())
	session := customer("u1")
	f.fillCart(t, session)

	require.NoError(t, f.carts.Clear(ctx, session))
	cart, err := f.carts.Get(ctx, session)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}
