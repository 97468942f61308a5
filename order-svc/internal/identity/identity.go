// Package identity turns an authenticated principal into an explicit Session
// and holds the authorization rules every privileged operation checks.
package identity

import (
	"context"
	"errors"
	"fmt"

	"tabletap/order-svc/internal/domain"
	"tabletap/pkg/authtoken"
)

type Principal struct {
	UserID       string
	RoleClaim    domain.Role
	RestaurantID string
}

// Session is passed into every service call. A session without a principal is
// an anonymous browser identified only by AnonymousID.
type Session struct {
	Principal   *Principal
	Profile     *domain.Profile
	AnonymousID string
}

func Anonymous(anonymousID string) *Session {
	return &Session{AnonymousID: anonymousID}
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Principal != nil && s.Profile != nil
}

func (s *Session) UserID() string {
	if !s.Authenticated() {
		return ""
	}
	return s.Principal.UserID
}

type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
}

type Resolver struct {
	profiles ProfileStore
	tokens   *authtoken.Maker
}

func NewResolver(profiles ProfileStore, tokens *authtoken.Maker) *Resolver {
	return &Resolver{profiles: profiles, tokens: tokens}
}

// Resolve loads the profile for principal. A principal without a stored
// profile is treated as a plain customer.
func (r *Resolver) Resolve(ctx context.Context, principal *Principal) (*Session, error) {
	if principal == nil || principal.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}

	profile, err := r.profiles.GetProfile(ctx, principal.UserID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		profile = &domain.Profile{UserID: principal.UserID, Role: domain.RoleCustomer}
	case err != nil:
		return nil, fmt.Errorf("load profile %s: %w", principal.UserID, err)
	}

	return &Session{Principal: principal, Profile: profile}, nil
}

// FromToken verifies a bearer token and resolves its subject.
func (r *Resolver) FromToken(ctx context.Context, raw string) (*Session, error) {
	claims, err := r.tokens.Verify(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	principal := &Principal{
		UserID:       claims.Subject,
		RoleClaim:    domain.Role(claims.Role),
		RestaurantID: claims.RestaurantID,
	}
	return r.Resolve(ctx, principal)
}

func IsAdmin(profile *domain.Profile) bool {
	return profile != nil && profile.Role == domain.RoleAdmin
}

// CanManageRestaurant: owners of restaurantID, or any admin.
func CanManageRestaurant(profile *domain.Profile, restaurantID string) bool {
	if profile == nil {
		return false
	}
	switch profile.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleBusinessOwner:
		return restaurantID != "" && profile.RestaurantID == restaurantID
	}
	return false
}

// CanConfirmOrders: waiters and owners of restaurantID, or any admin.
func CanConfirmOrders(profile *domain.Profile, restaurantID string) bool {
	if profile == nil {
		return false
	}
	switch profile.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleWaiter, domain.RoleBusinessOwner:
		return restaurantID != "" && profile.RestaurantID == restaurantID
	}
	return false
}

// IsStaff reports whether the profile may use the staff screens at all.
func IsStaff(profile *domain.Profile) bool {
	if profile == nil {
		return false
	}
	switch profile.Role {
	case domain.RoleWaiter, domain.RoleBusinessOwner, domain.RoleAdmin:
		return true
	}
	return false
}
