// Copyright (c) 2026 SecureAuth. All rights reserved.

package auth

import "time"

// # Session & Token Constraints

const (
	// SessionTokenTTL is the absolute lifetime of a session token, applied
	// both to the JWT expiry claim and the Redis registry entry.
	SessionTokenTTL = 24 * time.Hour
)

// # User Cache Tiering
//
// Entry lifetime scales with how active the account is. Hot accounts stay
// resident for a month; dormant ones are cheap to evict within a day.

const (
	// CacheTTLLong is the lifetime for highly active accounts.
	CacheTTLLong = 30 * 24 * time.Hour

	// CacheTTLMedium is the lifetime for regular accounts, and the fallback
	// when the activity counter cannot be read.
	CacheTTLMedium = 7 * 24 * time.Hour

	// CacheTTLShort is the lifetime for new or dormant accounts.
	CacheTTLShort = 24 * time.Hour

	// HighActivityThreshold is the activity count above which an account
	// earns the long TTL.
	HighActivityThreshold = 10

	// RegularActivityThreshold is the activity count above which an account
	// earns the medium TTL.
	RegularActivityThreshold = 3

	// ActivityWindow is the expiry of the per-account activity counter,
	// independent of the user entry's own TTL.
	ActivityWindow = 30 * 24 * time.Hour
)

// # OTP Password Recovery

const (
	// OTPTTL is the lifetime of an issued one-time code.
	OTPTTL = 10 * time.Minute

	// OTPCooldown is the minimum interval between forgot-password requests
	// for the same email.
	OTPCooldown = 5 * time.Minute

	// otpMin and otpMax bound the 6-digit code range. Generation never
	// produces a value below 100000, so the string form has no leading zero.
	otpMin = 100000
	otpMax = 999999
)

// # Cache Key Namespaces

const (
	userKeyPrefix        = "user:"
	activityKeyPrefix    = "activity:"
	tokenKeyPrefix       = "token:"
	otpKeyPrefix         = "otp:"
	otpCooldownKeyPrefix = "otp_limit:"

	// tokenScanBatch is the COUNT hint for SCAN during bulk revocation.
	tokenScanBatch = 100
)
