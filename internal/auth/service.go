// Copyright (c) 2026 SecureAuth. All rights reserved.

/*
Service orchestration for the authentication core.

It composes the credential hasher, token issuer, user cache gateway, session
registry, and OTP store into the externally visible operations: Register,
Login, Logout, Profile, ForgotPassword, and ResetPassword.

Architecture:

  - Service: Orchestrates business logic across cache, store, and tokens.
  - Gateway: Cache-aside user records with activity-weighted TTLs.
  - Registry: Redis-backed token -> email binding (revocation truth).
  - Security: Bcrypt hashes and HS256-signed JWTs.
*/

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adewumi/secureauth/internal/platform/apperr"
	"github.com/adewumi/secureauth/internal/platform/ctxutil"
	"github.com/adewumi/secureauth/internal/platform/metrics"
	"github.com/adewumi/secureauth/internal/platform/sec"
	"github.com/adewumi/secureauth/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing and verifying session tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT bound to an email identity.
	GenerateAccessToken(email string, timeToLive time.Duration) (string, error)

	// VerifyToken checks signature and expiry. All failures are uniform —
	// callers cannot distinguish "expired" from "forged".
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// Service implements the authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, session
// issuance, or the reset flow must be reviewed by the security team.
type Service struct {
	gateway  *CacheGateway
	users    UserRepository
	sessions SessionRegistry
	otps     OTPStore
	tokens   TokenProvider
	mailer   Mailer
	jobs     Enqueuer
	stats    *metrics.Metrics
}

// NewService constructs a new [Service] with its dependencies.
// stats may be nil when instrumentation is not wired (tests).
func NewService(
	gateway *CacheGateway,
	users UserRepository,
	sessions SessionRegistry,
	otps OTPStore,
	tokens TokenProvider,
	mailer Mailer,
	jobs Enqueuer,
	stats *metrics.Metrics,
) *Service {
	return &Service{
		gateway:  gateway,
		users:    users,
		sessions: sessions,
		otps:     otps,
		tokens:   tokens,
		mailer:   mailer,
		jobs:     jobs,
		stats:    stats,
	}
}

// AuthSession represents a successfully established session.
type AuthSession struct {
	User  UserResource `json:"user"`
	Token string       `json:"token"`
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

/*
Register validates, hashes, and persists a brand new account, then issues
its first session.

Description: The uniqueness pre-check consults the cache gateway (which
falls through to the store), since a cached user implies existence even
before any store round-trip. The check is best-effort; the store's partial
unique index is the real guard against a racing duplicate.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *AuthSession: Created profile and session token
  - error: apperr.Conflict (email taken) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*AuthSession, error) {

	// ── 1. Uniqueness Pre-Check ───────────────────────────────────────────
	if _, err := service.gateway.GetComplete(context, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// ── 2. Credential Hashing ─────────────────────────────────────────────
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 3. Store Insert ───────────────────────────────────────────────────
	// Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuidv7.New(),
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: hashedPassword,
	}

	if err := service.users.Create(context, user); err != nil {
		return nil, err
	}

	// ── 4. Token Issuance ─────────────────────────────────────────────────
	token, err := service.tokens.GenerateAccessToken(user.Email, SessionTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// ── 5. Cache Warm-Up ──────────────────────────────────────────────────
	// Best-effort: registration already succeeded against the store.
	service.gateway.InitializeActivity(context, user.Email)
	if err := service.gateway.Write(context, user.Email, user.Cached()); err != nil {
		ctxutil.GetLogger(context).Warn("register_cache_write_failed",
			slog.String("email", user.Email),
			slog.Any("error", err),
		)
	}

	// ── 6. Session Entry ──────────────────────────────────────────────────
	if err := service.sessions.Issue(context, user.Email, token, SessionTokenTTL); err != nil {
		return nil, fmt.Errorf("auth_service_session_issue_failed: %w", err)
	}

	return &AuthSession{User: user.Resource(), Token: token}, nil
}

// # Authentication Flow

/*
Login validates credentials and establishes a fresh session.

Description: Authentication runs through the cache gateway, so a warm cache
never touches the relational store. Single-active-session policy: all prior
sessions for the email are revoked before the new token is issued, so a
successful login invalidates every other device.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *AuthSession: Profile and session token
  - error: apperr.NotFound (unknown email), apperr.Unauthorized (bad password)
*/
func (service *Service) Login(context context.Context, email, password string) (*AuthSession, error) {

	// ── 1. Credential Verification ────────────────────────────────────────
	profile, err := service.gateway.Authenticate(context, email, password)
	if err != nil {
		service.observeLogin(loginOutcome(err))
		return nil, err
	}

	// ── 2. Single-Session Policy ──────────────────────────────────────────
	// Best-effort: a failed sweep leaves stale tokens to expire naturally.
	if _, err := service.sessions.RevokeAll(context, email); err != nil {
		ctxutil.GetLogger(context).Warn("login_prior_session_sweep_failed",
			slog.String("email", email),
			slog.Any("error", err),
		)
	}

	// ── 3. Token + Session Issuance ───────────────────────────────────────
	token, err := service.tokens.GenerateAccessToken(email, SessionTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	if err := service.sessions.Issue(context, email, token, SessionTokenTTL); err != nil {
		return nil, fmt.Errorf("auth_service_session_issue_failed: %w", err)
	}

	service.observeLogin("success")
	return &AuthSession{User: *profile, Token: token}, nil
}

/*
Logout revokes every session bound to the identity's email.

Description: Deliberately broader than the presented token — any logout
forces re-authentication everywhere, trading per-device granularity for
simplicity and security.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - int: Number of sessions revoked
  - error: Revocation failures
*/
func (service *Service) Logout(context context.Context, email string) (int, error) {
	revoked, err := service.sessions.RevokeAll(context, email)
	if err != nil {
		return revoked, fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return revoked, nil
}

/*
Profile returns the public profile for an authenticated identity.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *UserResource: Public profile
  - error: apperr.NotFound or store failures
*/
func (service *Service) Profile(context context.Context, email string) (*UserResource, error) {
	return service.gateway.GetProfile(context, email)
}

/*
AuthenticateToken validates a bearer token end to end.

Description: A token is valid iff (a) it verifies against the issuer's
signature and expiry, AND (b) its registry entry still exists and is bound
to the same email as the decoded claim. Both checks are required — the
registry entry is what makes server-side revocation work before natural
expiry. Each successful authentication counts as one activity increment.

Parameters:
  - context: context.Context
  - tokenStr: string

Returns:
  - *sec.AuthClaims: Verified identity claims
  - error: apperr.Unauthorized on any failure (uniform)
*/
func (service *Service) AuthenticateToken(context context.Context, tokenStr string) (*sec.AuthClaims, error) {

	// ── 1. Cryptographic Check ────────────────────────────────────────────
	claims, err := service.tokens.VerifyToken(tokenStr)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	// ── 2. Registry Check (revocation) ────────────────────────────────────
	boundEmail, err := service.sessions.Resolve(context, tokenStr)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}
	if boundEmail != claims.Email() {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	service.gateway.IncrementActivity(context, claims.Email())
	return claims, nil
}

// # Password Recovery

// ForgotPasswordResult describes an accepted reset request.
type ForgotPasswordResult struct {
	ExpiresInMinutes    int `json:"expires_in_minutes"`
	RateLimitWindowMins int `json:"rate_limit_window_minutes"`
}

/*
ForgotPassword initiates the OTP reset flow for an email.

Description: Ordering matters — the code is stored before the email is
dispatched (never send a code that cannot be verified because storage is
down), and the cooldown marker is set only after a successful dispatch
(never throttle a user who received nothing).

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *ForgotPasswordResult: Code lifetime and cooldown window
  - error: apperr.RateLimited, apperr.NotFound, or dispatch failures
*/
func (service *Service) ForgotPassword(context context.Context, email string) (*ForgotPasswordResult, error) {

	// ── 1. Cooldown Check ─────────────────────────────────────────────────
	allowed, err := service.otps.CanRequest(context, email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_cooldown_check_failed: %w", err)
	}
	if !allowed {
		remaining, err := service.otps.CooldownRemaining(context, email)
		if err != nil {
			remaining = OTPCooldown
		}
		return nil, apperr.RateLimited(int(remaining.Seconds()))
	}

	// ── 2. Existence + Personalization ────────────────────────────────────
	profile, err := service.gateway.GetProfile(context, email)
	if err != nil {
		return nil, err
	}

	// ── 3. Code Issuance ──────────────────────────────────────────────────
	code, err := service.otps.Issue(context, email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_otp_issue_failed: %w", err)
	}

	// ── 4. Email Dispatch ─────────────────────────────────────────────────
	if err := service.mailer.SendPasswordResetCode(context, email, profile.Name, code); err != nil {
		return nil, apperr.ServiceUnavailable("Could not send the reset email. Please try again later.")
	}

	// ── 5. Cooldown Marker ────────────────────────────────────────────────
	if err := service.otps.MarkRequested(context, email); err != nil {
		ctxutil.GetLogger(context).Warn("forgot_password_cooldown_mark_failed",
			slog.String("email", email),
			slog.Any("error", err),
		)
	}

	return &ForgotPasswordResult{
		ExpiresInMinutes:    int(OTPTTL.Minutes()),
		RateLimitWindowMins: int(OTPCooldown.Minutes()),
	}, nil
}

/*
ResetPassword completes the OTP reset flow.

Description: On a verified code the credential hash is updated in the store,
the cache entry's hash is refreshed, every session for the email is revoked,
and a confirmation email job is enqueued. The store update is the only hard
requirement — cache refresh and session sweep are best-effort (a failed
sweep leaves tokens to expire naturally), and the notification must never
fail or delay the response.

Parameters:
  - context: context.Context
  - email: string
  - otp: string
  - newPassword: string

Returns:
  - error: apperr.NotFound, invalid-OTP failure, or store update failures
*/
func (service *Service) ResetPassword(context context.Context, email, otp, newPassword string) error {

	// ── 1. Existence Check ────────────────────────────────────────────────
	cached, err := service.gateway.GetComplete(context, email)
	if err != nil {
		return err
	}

	// ── 2. OTP Verification (consumes on match) ───────────────────────────
	matched, err := service.otps.VerifyAndConsume(context, email, otp)
	if err != nil {
		return fmt.Errorf("auth_service_otp_verify_failed: %w", err)
	}
	if !matched {
		return apperr.Unprocessable("Invalid or expired OTP")
	}

	// ── 3. Store Update ───────────────────────────────────────────────────
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_hash_failed: %w", err)
	}

	if err := service.users.UpdatePassword(context, email, hashedPassword); err != nil {
		return err
	}

	// ── 4. Cache Refresh ──────────────────────────────────────────────────
	cached.PasswordHash = hashedPassword
	if err := service.gateway.Write(context, email, cached); err != nil {
		// A stale hash must not linger. Invalidate so the next read reloads.
		_ = service.gateway.Invalidate(context, email)
		ctxutil.GetLogger(context).Warn("reset_password_cache_refresh_failed",
			slog.String("email", email),
			slog.Any("error", err),
		)
	}

	// ── 5. Session Sweep ──────────────────────────────────────────────────
	if _, err := service.sessions.RevokeAll(context, email); err != nil {
		ctxutil.GetLogger(context).Warn("reset_password_session_sweep_failed",
			slog.String("email", email),
			slog.Any("error", err),
		)
	}

	// ── 6. Confirmation Notification (fire-and-forget) ────────────────────
	if err := service.jobs.EnqueueResetSuccess(context, email, cached.Name, time.Now()); err != nil {
		ctxutil.GetLogger(context).Warn("reset_password_notification_enqueue_failed",
			slog.String("email", email),
			slog.Any("error", err),
		)
	}

	return nil
}

// # Instrumentation Helpers

// observeLogin records a login outcome when instrumentation is wired.
func (service *Service) observeLogin(outcome string) {
	if service.stats != nil {
		service.stats.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}

// loginOutcome maps an authentication error to a metric label.
func loginOutcome(err error) string {
	appError := apperr.As(err)
	if appError == nil {
		return "error"
	}
	switch appError.Code {
	case "NOT_FOUND":
		return "not_found"
	case "UNAUTHORIZED":
		return "invalid_credentials"
	default:
		return "error"
	}
}
