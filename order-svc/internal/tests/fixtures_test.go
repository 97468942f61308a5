package tests

import (
	"context"
	"testing"
	"time"

	"tabletap/order-svc/internal/domain"
	"tabletap/order-svc/internal/identity"
	"tabletap/order-svc/internal/service"
	"tabletap/order-svc/internal/storage"
	"tabletap/pkg/authtoken"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	restaurantID = "rest-1"
	otherRestID  = "rest-2"
	itemA        = "item-a"
	itemB        = "item-b"
	catMains     = "cat-mains"
	catDrinks    = "cat-drinks"
)

type fixture struct {
	store    *storage.MemoryStore
	carts    *service.CartService
	ledger   *service.Ledger
	orders   *service.OrderService
	accounts *service.AccountService
	menu     *service.RestaurantService
	tokens   *authtoken.Maker
}

func defaultLedgerConfig() service.LedgerConfig {
	return service.LedgerConfig{
		AccrualEnabled:    true,
		RedemptionEnabled: true,
		RetryAttempts:     3,
		RetryBackoff:      time.Millisecond,
	}
}

// newFixture wires every service over one MemoryStore seeded with a restaurant
// paying 10% loyalty and two menu items: a at 10.00 and b at 5.00.
func newFixture(t *testing.T, cfg service.LedgerConfig) *fixture {
	t.Helper()
	storage.PasswordCost = bcrypt.MinCost

	ctx := context.Background()
	store := storage.NewMemoryStore()
	logger := zerolog.Nop()

	require.NoError(t, store.CreateRestaurant(ctx, &domain.Restaurant{ID: restaurantID, Name: "Kebapçı", LoyaltyPercentage: decimal.NewFromInt(10)}))
	require.NoError(t, store.CreateRestaurant(ctx, &domain.Restaurant{ID: otherRestID, Name: "Pideci", LoyaltyPercentage: decimal.NewFromInt(5)}))
	require.NoError(t, store.CreateCategory(ctx, &domain.Category{ID: catMains, RestaurantID: restaurantID, Name: "Mains"}))
	require.NoError(t, store.CreateCategory(ctx, &domain.Category{ID: catDrinks, RestaurantID: restaurantID, Name: "Drinks"}))
	require.NoError(t, store.CreateMenuItem(ctx, &domain.MenuItem{ID: itemA, RestaurantID: restaurantID, Name: "Adana", Category: "Mains", Price: decimal.NewFromInt(10)}))
	require.NoError(t, store.CreateMenuItem(ctx, &domain.MenuItem{ID: itemB, RestaurantID: restaurantID, Name: "Ayran", Category: "Drinks", Price: decimal.NewFromInt(5)}))
	require.NoError(t, store.CreateMenuItem(ctx, &domain.MenuItem{ID: "item-p", RestaurantID: otherRestID, Name: "Lahmacun", Price: decimal.NewFromInt(8)}))

	tokens := authtoken.NewMaker("test-secret", time.Hour)
	carts := service.NewCartService(store, store, store, time.Hour, logger)
	ledger := service.NewLedger(store, cfg, logger)
	orders := service.NewOrderService(service.OrderDeps{
		Orders:      store,
		Carts:       carts,
		Ledger:      ledger,
		Menu:        store,
		Restaurants: store,
		Bus:         store,
		QR:          service.DefaultQRGenerator{Size: 128},
		Logger:      logger,
	})

	return &fixture{
		store:    store,
		carts:    carts,
		ledger:   ledger,
		orders:   orders,
		accounts: service.NewAccountService(store, store, store, tokens, logger),
		menu:     service.NewRestaurantService(store, store),
		tokens:   tokens,
	}
}

func sessionFor(userID string, role domain.Role, restaurant string) *identity.Session {
	return &identity.Session{
		Principal: &identity.Principal{UserID: userID, RoleClaim: role, RestaurantID: restaurant},
		Profile:   &domain.Profile{UserID: userID, Role: role, RestaurantID: restaurant},
	}
}

func customer(userID string) *identity.Session {
	return sessionFor(userID, domain.RoleCustomer, "")
}

func waiter(restaurant string) *identity.Session {
	return sessionFor("waiter-"+restaurant, domain.RoleWaiter, restaurant)
}

func admin() *identity.Session {
	return sessionFor("admin-1", domain.RoleAdmin, "")
}

// fillCart puts a×2 and b×1 into the session's cart: a total of 25.
func (f *fixture) fillCart(t *testing.T, session *identity.Session) {
	t.Helper()
	ctx := context.Background()
	for _, id := range []string{itemA, itemA, itemB} {
		_, err := f.carts.AddItem(ctx, session, restaurantID, id, false)
		require.NoError(t, err)
	}
}

func (f *fixture) seedBalance(t *testing.T, userID, restaurant string, amount decimal.Decimal) {
	t.Helper()
	_, err := f.store.UpdateBalance(context.Background(), userID, restaurant, "", func(domain.BalanceState) decimal.Decimal {
		return amount
	})
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, userID, restaurant string) decimal.Decimal {
	t.Helper()
	balance, err := f.store.GetBalance(context.Background(), userID, restaurant)
	require.NoError(t, err)
	return balance
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual)
}
