package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"tabletap/order-svc/internal/domain"
	"tabletap/pkg/authtoken"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileMap map[string]*domain.Profile

func (m profileMap) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	if userID == "broken" {
		return nil, errors.New("connection reset")
	}
	p, ok := m[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func TestResolver_Resolve(t *testing.T) {
	profiles := profileMap{
		"w-1": {UserID: "w-1", Role: domain.RoleWaiter, RestaurantID: "r-1"},
	}
	resolver := NewResolver(profiles, authtoken.NewMaker("secret", time.Hour))
	ctx := context.Background()

	session, err := resolver.Resolve(ctx, &Principal{UserID: "w-1"})
	require.NoError(t, err)
	assert.True(t, session.Authenticated())
	assert.Equal(t, domain.RoleWaiter, session.Profile.Role)
	assert.Equal(t, "w-1", session.UserID())

	session, err = resolver.Resolve(ctx, &Principal{UserID: "new-user"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, session.Profile.Role)

	_, err = resolver.Resolve(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = resolver.Resolve(ctx, &Principal{UserID: "broken"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestResolver_FromToken(t *testing.T) {
	maker := authtoken.NewMaker("secret", time.Hour)
	resolver := NewResolver(profileMap{
		"o-1": {UserID: "o-1", Role: domain.RoleBusinessOwner, RestaurantID: "r-9"},
	}, maker)

	raw, err := maker.Issue("o-1", string(domain.RoleBusinessOwner), "r-9")
	require.NoError(t, err)

	session, err := resolver.FromToken(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "r-9", session.Principal.RestaurantID)
	assert.Equal(t, "r-9", session.Profile.RestaurantID)

	_, err = resolver.FromToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAnonymousSession(t *testing.T) {
	session := Anonymous("browser-1")
	assert.False(t, session.Authenticated())
	assert.Empty(t, session.UserID())

	var missing *Session
	assert.False(t, missing.Authenticated())
}

func TestAuthorizationRules(t *testing.T) {
	tests := []struct {
		name       string
		profile    *domain.Profile
		restaurant string
		canManage  bool
		canConfirm bool
	}{
		{name: "nil profile", profile: nil, restaurant: "r-1"},
		{name: "customer", profile: &domain.Profile{Role: domain.RoleCustomer, RestaurantID: "r-1"}, restaurant: "r-1"},
		{name: "waiter own restaurant", profile: &domain.Profile{Role: domain.RoleWaiter, RestaurantID: "r-1"}, restaurant: "r-1", canConfirm: true},
		{name: "waiter other restaurant", profile: &domain.Profile{Role: domain.RoleWaiter, RestaurantID: "r-1"}, restaurant: "r-2"},
		{name: "owner own restaurant", profile: &domain.Profile{Role: domain.RoleBusinessOwner, RestaurantID: "r-1"}, restaurant: "r-1", canManage: true, canConfirm: true},
		{name: "owner other restaurant", profile: &domain.Profile{Role: domain.RoleBusinessOwner, RestaurantID: "r-1"}, restaurant: "r-2"},
		{name: "owner without scope", profile: &domain.Profile{Role: domain.RoleBusinessOwner}, restaurant: ""},
		{name: "admin anywhere", profile: &domain.Profile{Role: domain.RoleAdmin}, restaurant: "r-7", canManage: true, canConfirm: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.canManage, CanManageRestaurant(testCase.profile, testCase.restaurant))
			assert.Equal(t, testCase.canConfirm, CanConfirmOrders(testCase.profile, testCase.restaurant))
		})
	}
}

func TestParseRole(t *testing.T) {
	for _, value := range []string{"customer", "waiter", "businessOwner", "admin"} {
		role, err := domain.ParseRole(value)
		require.NoError(t, err)
		assert.Equal(t, domain.Role(value), role)
	}

	for _, value := range []string{"", "işletmeci", "garson", "user", "Admin"} {
		_, err := domain.ParseRole(value)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, value)
	}
}
