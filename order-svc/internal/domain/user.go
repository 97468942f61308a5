package domain

import "time"

type Role string

const (
	RoleCustomer      Role = "customer"
	RoleWaiter        Role = "waiter"
	RoleBusinessOwner Role = "businessOwner"
	RoleAdmin         Role = "admin"
)

// ParseRole accepts only the four canonical role names. Legacy spellings are
// rewritten in storage by the schema backfill and never reach this point.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleCustomer, RoleWaiter, RoleBusinessOwner, RoleAdmin:
		return Role(value), nil
	}
	return "", InvalidArgument("unknown role " + value)
}

type Profile struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	RestaurantID string    `json:"restaurant_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Account is the identity provider's record: credentials plus the role claim
// carried in issued tokens.
type Account struct {
	UID          string    `json:"uid"`
	LoginHandle  string    `json:"login_handle"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	RoleClaim    Role      `json:"role_claim"`
	CreatedAt    time.Time `json:"created_at"`
}
