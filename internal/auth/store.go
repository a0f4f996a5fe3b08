// Copyright (c) 2026 SecureAuth. All rights reserved.

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts in the
// relational system of record.
type UserRepository interface {

	/*
		Create persists a brand-new user account.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Conflict on duplicate email, or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		FindByEmail returns the non-deleted account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		UpdatePassword replaces only the account's credential hash.

		Parameters:
		  - context: context.Context
		  - email: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, email, newHash string) error

	/*
		SoftDelete marks the account as deleted without removing the row.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - error: Persistence failures
	*/
	SoftDelete(context context.Context, email string) error
}

// # Session Registry

// SessionRegistry binds opaque bearer tokens to identities in the cache and
// supports bulk revocation. An entry's absence makes the token invalid even
// if it would still verify cryptographically — that is the revocation
// mechanism, so there is deliberately no store fallback.
type SessionRegistry interface {

	/*
		Issue stores token -> email with a fixed absolute TTL. Existing tokens
		for the same email are untouched.

		Parameters:
		  - context: context.Context
		  - email: string
		  - token: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Issue(context context.Context, email, token string, ttl time.Duration) error

	/*
		Resolve returns the email bound to the token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - string: Bound email
		  - error: apperr.Unauthorized if the token is absent (revoked or expired)
	*/
	Resolve(context context.Context, token string) (string, error)

	/*
		Revoke deletes a single token entry. Used for targeted invalidation
		when the caller holds the token directly.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Deletion failures
	*/
	Revoke(context context.Context, token string) error

	/*
		RevokeAll deletes every token bound to the email and returns the count.
		Non-atomic by design: a token issued mid-scan may be missed; revocation
		is eventual, not instantaneous.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - int: Number of entries deleted
		  - error: Enumeration or deletion failures
	*/
	RevokeAll(context context.Context, email string) (int, error)
}

// # OTP Reset Flow

// OTPStore manages the per-email one-time-code state machine
// (NONE -> ISSUED -> CONSUMED | EXPIRED) and its request cooldown.
type OTPStore interface {

	/*
		Issue generates a 6-digit code, stores it with [OTPTTL], and
		unconditionally overwrites any prior code for the email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - string: The issued code (fixed-width, no leading zero)
		  - error: Generation or storage failures
	*/
	Issue(context context.Context, email string) (string, error)

	/*
		VerifyAndConsume checks the candidate against the stored code.
		A match deletes the entry so the code cannot be replayed. A mismatch
		leaves the stored code untouched.

		Parameters:
		  - context: context.Context
		  - email: string
		  - candidate: string

		Returns:
		  - bool: true iff the candidate matched a live code
		  - error: Connectivity failures only — absence is (false, nil)
	*/
	VerifyAndConsume(context context.Context, email, candidate string) (bool, error)

	/*
		CanRequest reports whether the email is outside its request cooldown.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - bool: true if a new request is allowed
		  - error: Connectivity failures
	*/
	CanRequest(context context.Context, email string) (bool, error)

	/*
		MarkRequested sets the cooldown marker. Called only after the code and
		its email were both successfully dispatched.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - error: Persistence failures
	*/
	MarkRequested(context context.Context, email string) error

	/*
		CooldownRemaining returns how long until the email may request again.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - time.Duration: Zero if no cooldown is active
		  - error: Connectivity failures
	*/
	CooldownRemaining(context context.Context, email string) (time.Duration, error)
}

// # Outbound Collaborators

// Mailer delivers the OTP to the account owner. Implementations report
// failures as errors; they never panic into the caller.
type Mailer interface {

	/*
		SendPasswordResetCode delivers the one-time code email.

		Parameters:
		  - context: context.Context
		  - email: string (recipient)
		  - name: string (personalization)
		  - code: string (6-digit OTP)

		Returns:
		  - error: Dispatch failures
	*/
	SendPasswordResetCode(context context.Context, email, name, code string) error
}

// Enqueuer publishes best-effort background jobs. Used only for the
// post-reset confirmation notification; failures must never surface to the
// user-visible response.
type Enqueuer interface {

	/*
		EnqueueResetSuccess queues the reset-confirmation email job.

		Parameters:
		  - context: context.Context
		  - email: string
		  - name: string
		  - resetTime: time.Time

		Returns:
		  - error: Enqueue failures (logged by the caller, not propagated)
	*/
	EnqueueResetSuccess(context context.Context, email, name string, resetTime time.Time) error
}
