// Copyright (c) 2026 SecureAuth. All rights reserved.

package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adewumi/secureauth/internal/auth"
	"github.com/adewumi/secureauth/internal/platform/apperr"
)

/*
TestService_Register covers enrollment: session issuance, cache warm-up,
activity seeding, and the duplicate-email conflict.
*/
func TestService_Register(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	session := fixture.registerUser(t, testEmail, testPassword)
	assert.Equal(t, testEmail, session.User.Email)
	assert.NotEmpty(t, session.Token)

	// The first session is live immediately.
	claims, err := fixture.service.AuthenticateToken(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, testEmail, claims.Email())

	// Cache warm-up: the record is resident and the activity counter seeded.
	assert.True(t, fixture.redis.Exists("user:"+testEmail))
	count, err := fixture.redis.Get("activity:" + testEmail)
	require.NoError(t, err)
	assert.NotEqual(t, "0", count)

	// Same email again is a conflict.
	_, err = fixture.service.Register(ctx, auth.RegisterInput{
		Name:     "Jane Again",
		Email:    testEmail,
		Password: "another-pass",
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

/*
TestService_LoginWarmCache verifies that a login after registration is served
entirely from the cache — the relational store is never consulted.
*/
func TestService_LoginWarmCache(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	fixture.registerUser(t, testEmail, testPassword)
	fixture.repo.findCalls = 0

	session, err := fixture.service.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)
	assert.Equal(t, testEmail, session.User.Email)
	assert.Zero(t, fixture.repo.findCalls, "warm-cache login must not hit the store")
}

/*
TestService_LoginColdCache verifies that a flushed cache degrades the login
to the store and repopulates the record.
*/
func TestService_LoginColdCache(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	fixture.registerUser(t, testEmail, testPassword)
	fixture.redis.FlushAll()
	fixture.repo.findCalls = 0

	session, err := fixture.service.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)
	assert.Equal(t, testEmail, session.User.Email)
	assert.Equal(t, 1, fixture.repo.findCalls)
	assert.True(t, fixture.redis.Exists("user:"+testEmail))
}

/*
TestService_LoginFailures distinguishes the unknown-account and
wrong-password outcomes.
*/
func TestService_LoginFailures(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	fixture.registerUser(t, testEmail, testPassword)

	t.Run("unknown_email", func(t *testing.T) {
		_, err := fixture.service.Login(ctx, "ghost@example.com", testPassword)
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := fixture.service.Login(ctx, testEmail, "wrong-password")
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
	})
}

/*
TestService_LoginSingleSession verifies the single-active-session policy: a
new login invalidates every previously issued token for the account.
*/
func TestService_LoginSingleSession(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	first := fixture.registerUser(t, testEmail, testPassword)

	second, err := fixture.service.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	// The registration-time token is dead, the fresh one lives.
	_, err = fixture.service.AuthenticateToken(ctx, first.Token)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	_, err = fixture.service.AuthenticateToken(ctx, second.Token)
	require.NoError(t, err)
}

/*
TestService_Logout verifies the revocation sweep and its reported count.
*/
func TestService_Logout(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	session := fixture.registerUser(t, testEmail, testPassword)

	revoked, err := fixture.service.Logout(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, 1, revoked)

	// The signature still verifies, but the registry entry is gone.
	_, err = fixture.service.AuthenticateToken(ctx, session.Token)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	// Logging out with nothing live revokes zero.
	revoked, err = fixture.service.Logout(ctx, testEmail)
	require.NoError(t, err)
	assert.Zero(t, revoked)
}

/*
TestService_AuthenticateToken covers the dual-check token contract: both the
signature and the registry binding must hold.
*/
func TestService_AuthenticateToken(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	session := fixture.registerUser(t, testEmail, testPassword)

	t.Run("valid_token", func(t *testing.T) {
		claims, err := fixture.service.AuthenticateToken(ctx, session.Token)
		require.NoError(t, err)
		assert.Equal(t, testEmail, claims.Email())
	})

	t.Run("garbage_token", func(t *testing.T) {
		_, err := fixture.service.AuthenticateToken(ctx, "not-a-token")
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
	})

	t.Run("registry_binding_mismatch", func(t *testing.T) {
		// A verifiable token whose registry entry belongs to someone else.
		require.NoError(t, fixture.redis.Set("token:"+session.Token, "mallory@example.com"))

		_, err := fixture.service.AuthenticateToken(ctx, session.Token)
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
	})
}

/*
TestService_ForgotPassword covers the recovery request flow: dispatch,
cooldown enforcement, and the unknown-account outcome.
*/
func TestService_ForgotPassword(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	fixture.registerUser(t, testEmail, testPassword)

	result, err := fixture.service.ForgotPassword(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, 10, result.ExpiresInMinutes)
	assert.Equal(t, 5, result.RateLimitWindowMins)

	require.Len(t, fixture.mailer.sentTo, 1)
	assert.Equal(t, testEmail, fixture.mailer.sentTo[0])
	assert.Len(t, fixture.mailer.lastCode, 6)

	t.Run("cooldown_blocks_repeat", func(t *testing.T) {
		_, err := fixture.service.ForgotPassword(ctx, testEmail)
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "RATE_LIMITED", ae.Code)
		assert.Greater(t, ae.RetryAfterSeconds, 0)

		// No second email went out.
		assert.Len(t, fixture.mailer.sentTo, 1)
	})

	t.Run("unknown_email", func(t *testing.T) {
		_, err := fixture.service.ForgotPassword(ctx, "ghost@example.com")
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

/*
TestService_ForgotPasswordDispatchFailure verifies that a failed email leaves
the user unthrottled — the cooldown only starts after a delivered code.
*/
func TestService_ForgotPasswordDispatchFailure(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	fixture.registerUser(t, testEmail, testPassword)
	fixture.mailer.fail = true

	_, err := fixture.service.ForgotPassword(ctx, testEmail)
	require.Error(t, err)
	assert.Equal(t, "SERVICE_UNAVAILABLE", apperr.As(err).Code)

	// An immediate retry is allowed once mail recovers.
	fixture.mailer.fail = false
	_, err = fixture.service.ForgotPassword(ctx, testEmail)
	require.NoError(t, err)
}

/*
TestService_ResetPassword covers the full recovery completion: code
consumption, hash rotation, session sweep, and the confirmation job.
*/
func TestService_ResetPassword(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	session := fixture.registerUser(t, testEmail, testPassword)

	_, err := fixture.service.ForgotPassword(ctx, testEmail)
	require.NoError(t, err)
	code := fixture.mailer.lastCode

	const newPassword = "brand-new-pass"
	require.NoError(t, fixture.service.ResetPassword(ctx, testEmail, code, newPassword))

	// Every pre-reset session is revoked.
	_, err = fixture.service.AuthenticateToken(ctx, session.Token)
	require.Error(t, err)

	// Old credentials are dead, new ones work — including from the cache.
	_, err = fixture.service.Login(ctx, testEmail, testPassword)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	_, err = fixture.service.Login(ctx, testEmail, newPassword)
	require.NoError(t, err)

	// The confirmation job was enqueued.
	require.Len(t, fixture.enqueuer.enqueued, 1)
	assert.Equal(t, testEmail, fixture.enqueuer.enqueued[0])

	// The code was consumed: replaying it fails.
	err = fixture.service.ResetPassword(ctx, testEmail, code, "yet-another-pass")
	require.Error(t, err)
	assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)
}

/*
TestService_ResetPasswordWrongCode verifies a mismatched code is rejected
without consuming the legitimate one.
*/
func TestService_ResetPasswordWrongCode(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	fixture.registerUser(t, testEmail, testPassword)

	_, err := fixture.service.ForgotPassword(ctx, testEmail)
	require.NoError(t, err)
	code := fixture.mailer.lastCode

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	err = fixture.service.ResetPassword(ctx, testEmail, wrong, "brand-new-pass")
	require.Error(t, err)
	assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)

	// The real code survived the bad attempt.
	require.NoError(t, fixture.service.ResetPassword(ctx, testEmail, code, "brand-new-pass"))
}

/*
TestService_Profile verifies the public projection returned to authenticated
callers.
*/
func TestService_Profile(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	fixture.registerUser(t, testEmail, testPassword)

	profile, err := fixture.service.Profile(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, testEmail, profile.Email)
	assert.Equal(t, "Jane Doe", profile.Name)

	_, err = fixture.service.Profile(ctx, "ghost@example.com")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
