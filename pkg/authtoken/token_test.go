package authtoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaker_IssueAndVerify(t *testing.T) {
	maker := NewMaker("secret", time.Hour)

	raw, err := maker.Issue("u-1", "waiter", "r-1")
	require.NoError(t, err)

	claims, err := maker.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "waiter", claims.Role)
	assert.Equal(t, "r-1", claims.RestaurantID)
}

func TestMaker_VerifyRejects(t *testing.T) {
	maker := NewMaker("secret", time.Hour)
	other := NewMaker("other-secret", time.Hour)

	raw, err := other.Issue("u-1", "customer", "")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "empty", token: "", wantErr: ErrMissingToken},
		{name: "garbage", token: "not-a-jwt", wantErr: ErrInvalidToken},
		{name: "wrong secret", token: raw, wantErr: ErrInvalidToken},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := maker.Verify(testCase.token)
			assert.ErrorIs(t, err, testCase.wantErr)
		})
	}
}

func TestMaker_Expired(t *testing.T) {
	maker := NewMaker("secret", time.Minute)
	maker.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, err := maker.Issue("u-1", "customer", "")
	require.NoError(t, err)

	maker.now = time.Now
	_, err = maker.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestFromHeader(t *testing.T) {
	assert.Equal(t, "abc", FromHeader("Bearer abc"))
	assert.Equal(t, "abc", FromHeader("bearer abc"))
	assert.Equal(t, "", FromHeader("Basic abc"))
	assert.Equal(t, "", FromHeader(""))
}
