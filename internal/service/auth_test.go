package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heritage_tree/internal/model"
)

func newTestAuth(t *testing.T) *Auth {
	t.Helper()
	auth, err := NewAuth(&AuthConfig{SecretKey: "secret", TokenDuration: time.Hour, AdminKey: "admin"}, NewNopLogger())
	require.NoError(t, err)
	return auth
}

func TestAuth_LoginAndValidate(t *testing.T) {
	auth := newTestAuth(t)

	token, err := auth.Login("admin")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, claims.User().IsAdmin())

	refreshed, err := auth.RefreshToken(token)
	require.NoError(t, err)
	_, err = auth.ValidateToken(refreshed)
	assert.NoError(t, err)
}

func TestAuth_RejectsBadKey(t *testing.T) {
	_, err := newTestAuth(t).Login("guess")
	assert.True(t, IsCode(err, ErrAuthentication))

	noKey, err := NewAuth(&AuthConfig{SecretKey: "secret"}, NewNopLogger())
	require.NoError(t, err)
	_, err = noKey.Login("")
	assert.True(t, IsCode(err, ErrAuthentication))
}

func TestAuth_RejectsForeignTokens(t *testing.T) {
	auth := newTestAuth(t)

	other, err := NewAuth(&AuthConfig{SecretKey: "other", AdminKey: "admin"}, NewNopLogger())
	require.NoError(t, err)
	foreign, err := other.Login("admin")
	require.NoError(t, err)
	_, err = auth.ValidateToken(foreign)
	assert.True(t, IsCode(err, ErrAuthentication))

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = auth.ValidateToken(signed)
	assert.True(t, IsCode(err, ErrAuthentication))

	_, err = auth.ValidateToken("not-a-token")
	assert.True(t, IsCode(err, ErrAuthentication))
}

func TestNewAuth_RequiresSecret(t *testing.T) {
	_, err := NewAuth(&AuthConfig{}, NewNopLogger())
	assert.True(t, IsCode(err, ErrConfig))
}
