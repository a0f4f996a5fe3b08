// Copyright (c) 2026 SecureAuth. All rights reserved.

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adewumi/secureauth/internal/platform/sec"
)

func newTestTokenService(t *testing.T) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService("unit-test-secret", "secureauth.test")
	require.NoError(t, err)
	return service
}

/*
TestTokenService_RoundTrip verifies that a generated token carries the email
identity and verifies cleanly.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.GenerateAccessToken("jane@example.com", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", claims.Email())
	assert.Equal(t, "secureauth.test", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

/*
TestTokenService_Expired verifies that an expired token is rejected with the
uniform sentinel error.
*/
func TestTokenService_Expired(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.GenerateAccessToken("jane@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestTokenService_WrongSecret verifies that tokens signed with a different
secret never verify.
*/
func TestTokenService_WrongSecret(t *testing.T) {
	issuing, err := sec.NewTokenService("secret-a", "secureauth.test")
	require.NoError(t, err)

	verifying, err := sec.NewTokenService("secret-b", "secureauth.test")
	require.NoError(t, err)

	token, err := issuing.GenerateAccessToken("jane@example.com", time.Hour)
	require.NoError(t, err)

	_, err = verifying.VerifyToken(token)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestTokenService_Garbage verifies that malformed input is rejected uniformly.
*/
func TestTokenService_Garbage(t *testing.T) {
	service := newTestTokenService(t)

	for _, tokenString := range []string{"", "garbage", "a.b.c"} {
		_, err := service.VerifyToken(tokenString)
		assert.ErrorIs(t, err, sec.ErrInvalidToken)
	}
}

/*
TestNewTokenService_EmptySecret verifies construction fails fast without a secret.
*/
func TestNewTokenService_EmptySecret(t *testing.T) {
	_, err := sec.NewTokenService("", "secureauth.test")
	assert.Error(t, err)
}
