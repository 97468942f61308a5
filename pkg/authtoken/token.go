// Package authtoken issues and verifies the bearer tokens shared by order-svc and
// report-svc. Tokens carry the subject, role claim, and restaurant scope so a service
// without access to the profile store can still make coarse authorization decisions.
package authtoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

type Claims struct {
	Role         string `json:"role"`
	RestaurantID string `json:"restaurant_id,omitempty"`
	jwt.RegisteredClaims
}

type Maker struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewMaker(secret string, ttl time.Duration) *Maker {
	return &Maker{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *Maker) Issue(userID, role, restaurantID string) (string, error) {
	now := m.now()
	claims := &Claims{
		Role:         role,
		RestaurantID: restaurantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Maker) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	return claims, nil
}

// FromHeader extracts the token from an "Authorization: Bearer <token>" header value.
func FromHeader(value string) string {
	const prefix = "bearer "
	if len(value) > len(prefix) && (value[:len(prefix)] == prefix || value[:len(prefix)] == "Bearer ") {
		return value[len(prefix):]
	}
	return ""
}
