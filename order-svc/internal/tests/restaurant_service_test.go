package tests

import (
	"context"
	"testing"

	"tabletap/order-svc/internal/domain"
	"tabletap/order-svc/internal/identity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestaurantService_Update(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		session       *identity.Session
		update        domain.Restaurant
		expectedError error
	}{
		{
			name:    "owner_updates_own",
			session: sessionFor("owner-1", domain.RoleBusinessOwner, restaurantID),
			update:  domain.Restaurant{ID: restaurantID, Name: "Kebapçı Halil", LoyaltyPercentage: decimal.NewFromInt(12)},
		},
		{
			name:          "owner_of_other_restaurant",
			session:       sessionFor("owner-2", domain.RoleBusinessOwner, otherRestID),
			update:        domain.Restaurant{ID: restaurantID, Name: "Hijack", LoyaltyPercentage: decimal.NewFromInt(50)},
			expectedError: domain.ErrPermissionDenied,
		},
		{
			name:          "waiter_denied",
			session:       waiter(restaurantID),
			update:        domain.Restaurant{ID: restaurantID, Name: "x"},
			expectedError: domain.ErrPermissionDenied,
		},
		{
			name:          "loyalty_out_of_range",
			session:       admin(),
			update:        domain.Restaurant{ID: restaurantID, Name: "x", LoyaltyPercentage: decimal.NewFromInt(-1)},
			expectedError: domain.ErrInvalidArgument,
		},
		{
			name:          "blank_name",
			session:       admin(),
			update:        domain.Restaurant{ID: restaurantID, Name: " "},
			expectedError: domain.ErrInvalidArgument,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture(t, defaultLedgerConfig())
			update := testCase.update
			err := f.menu.Update(ctx, testCase.session, &update)
			if testCase.expectedError != nil {
				assert.ErrorIs(t, err, testCase.expectedError)
				return
			}
			require.NoError(t, err)

			rest, err := f.menu.Get(ctx, restaurantID)
			require.NoError(t, err)
			assert.Equal(t, testCase.update.Name, rest.Name)
			assertDecimal(t, testCase.update.LoyaltyPercentage.String(), rest.LoyaltyPercentage)
		})
	}
}

func TestRestaurantService_MenuLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultLedgerConfig())
	owner := sessionFor("owner-1", domain.RoleBusinessOwner, restaurantID)

	item := &domain.MenuItem{RestaurantID: restaurantID, Name: "Künefe", Category: "Desserts", Price: decimal.NewFromInt(12)}
	require.NoError(t, f.menu.CreateMenuItem(ctx, owner, item))
	assert.NotEmpty(t, item.ID)

	categories, err := f.menu.Categories(ctx, restaurantID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Desserts", "Drinks", "Mains"}, categoryNames(categories))

	err = f.menu.CreateMenuItem(ctx, owner, &domain.MenuItem{RestaurantID: restaurantID, Name: "Free", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	err = f.menu.CreateMenuItem(ctx, waiter(restaurantID), &domain.MenuItem{RestaurantID: restaurantID, Name: "Çay", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	item.Price = decimal.NewFromInt(14)
	require.NoError(t, f.menu.UpdateMenuItem(ctx, owner, item))

	discounted, err := f.menu.ApplyDiscount(ctx, owner, restaurantID, item.ID, domain.DiscountAmount, decimal.NewFromInt(4))
	require.NoError(t, err)
	require.NotNil(t, discounted.DiscountPrice)
	assertDecimal(t, "10", *discounted.DiscountPrice)
	assertDecimal(t, "10", discounted.EffectivePrice())

	_, err = f.menu.ApplyDiscount(ctx, owner, restaurantID, item.ID, domain.DiscountType("bogo"), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.menu.ApplyDiscount(ctx, owner, restaurantID, item.ID, domain.DiscountAmount, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	restored, err := f.menu.RemoveDiscount(ctx, owner, restaurantID, item.ID)
	require.NoError(t, err)
	assert.Nil(t, restored.DiscountPrice)
	assertDecimal(t, "14", restored.EffectivePrice())

	require.NoError(t, f.menu.DeleteMenuItem(ctx, owner, restaurantID, item.ID))
	assert.ErrorIs(t, f.menu.DeleteMenuItem(ctx, owner, restaurantID, item.ID), domain.ErrNotFound)

	menu, err := f.menu.Menu(ctx, restaurantID)
	require.NoError(t, err)
	assert.Len(t, menu, 2)
}

func categoryNames(categories []domain.Category) []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names
}

func TestRestaurantService_Categories(t *testing.T) {
	ctx := context.Background()
	owner := sessionFor("owner-1", domain.RoleBusinessOwner, restaurantID)

	tests := []struct {
		name          string
		session       *identity.Session
		run           func(f *fixture, session *identity.Session) error
		expectedError error
		wantNames     []string
		wantItemCat   map[string]string
	}{
		{
			name:    "create",
			session: owner,
			run: func(f *fixture, session *identity.Session) error {
				c, err := f.menu.CreateCategory(ctx, session, restaurantID, "  Desserts ")
				if err == nil {
					assert.Equal(t, "Desserts", c.Name)
					assert.NotEmpty(t, c.ID)
				}
				return err
			},
			wantNames: []string{"Desserts", "Drinks", "Mains"},
		},
		{
			name:    "create_duplicate",
			session: owner,
			run: func(f *fixture, session *identity.Session) error {
				_, err := f.menu.CreateCategory(ctx, session, restaurantID, "Mains")
				return err
			},
			expectedError: domain.ErrCategoryExists,
		},
		{
			name:    "create_blank",
			session: owner,
			run: func(f *fixture, session *identity.Session) error {
				_, err := f.menu.CreateCategory(ctx, session, restaurantID, "   ")
				return err
			},
			expectedError: domain.ErrInvalidArgument,
		},
		{
			name:    "create_by_waiter",
			session: waiter(restaurantID),
			run: func(f *fixture, session *identity.Session) error {
				_, err := f.menu.CreateCategory(ctx, session, restaurantID, "Desserts")
				return err
			},
			expectedError: domain.ErrPermissionDenied,
		},
		{
			name:    "rename_refiles_items",
			session: owner,
			run: func(f *fixture, session *identity.Session) error {
				return f.menu.RenameCategory(ctx, session, restaurantID, catMains, "Grill")
			},
			wantNames:   []string{"Drinks", "Grill"},
			wantItemCat: map[string]string{itemA: "Grill", itemB: "Drinks"},
		},
		{
			name:    "rename_onto_existing",
			session: owner,
			run: func(f *fixture, session *identity.Session) error {
				return f.menu.RenameCategory(ctx, session, restaurantID, catMains, "Drinks")
			},
			expectedError: domain.ErrCategoryExists,
		},
		{
			name:    "rename_other_restaurant",
			session: sessionFor("owner-2", domain.RoleBusinessOwner, otherRestID),
			run: func(f *fixture, session *identity.Session) error {
				return f.menu.RenameCategory(ctx, session, otherRestID, catMains, "Grill")
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name:    "delete_leaves_items_uncategorized",
			session: owner,
			run: func(f *fixture, session *identity.Session) error {
				return f.menu.DeleteCategory(ctx, session, restaurantID, catDrinks)
			},
			wantNames:   []string{"Mains"},
			wantItemCat: map[string]string{itemA: "Mains", itemB: ""},
		},
		{
			name:    "delete_unknown",
			session: owner,
			run: func(f *fixture, session *identity.Session) error {
				return f.menu.DeleteCategory(ctx, session, restaurantID, "cat-missing")
			},
			expectedError: domain.ErrNotFound,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture(t, defaultLedgerConfig())
			err := testCase.run(f, testCase.session)
			if testCase.expectedError != nil {
				assert.ErrorIs(t, err, testCase.expectedError)
				return
			}
			require.NoError(t, err)

			categories, err := f.menu.Categories(ctx, restaurantID)
			require.NoError(t, err)
			assert.Equal(t, testCase.wantNames, categoryNames(categories))

			for itemID, want := range testCase.wantItemCat {
				item, err := f.store.GetMenuItem(ctx, restaurantID, itemID)
				require.NoError(t, err)
				assert.Equal(t, want, item.Category, itemID)
			}
		})
	}
}
