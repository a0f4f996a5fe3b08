// Copyright (c) 2026 SecureAuth. All rights reserved.

package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// # OTP Store

// RedisOTPStore implements [OTPStore] on Redis.
//
// State machine per email: NONE -> ISSUED -> (CONSUMED | EXPIRED).
// At most one live code exists per email; issuing a new one overwrites the
// previous, implicitly invalidating it.
type RedisOTPStore struct {
	client *redis.Client
}

// NewOTPStore creates a new Redis-backed OTPStore.
func NewOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{client: client}
}

/*
Issue generates and stores a fresh 6-digit code for the email.

Description: The code is drawn uniformly from [100000, 999999] using the
crypto-grade random source, so the fixed-width string form never has a
leading zero. Stored with [OTPTTL], overwriting any prior code.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: The issued code
  - error: Generation or storage failures
*/
func (store *RedisOTPStore) Issue(context context.Context, email string) (string, error) {
	offset, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("redis_otp_generate_failed: %w", err)
	}
	code := strconv.FormatInt(otpMin+offset.Int64(), 10)

	if err := store.client.Set(context, otpKeyPrefix+email, code, OTPTTL).Err(); err != nil {
		return "", fmt.Errorf("redis_otp_store_failed: %w", err)
	}

	return code, nil
}

/*
VerifyAndConsume checks a candidate code and deletes the entry on a match.

Description: A match is single-use — the delete prevents replay. A mismatch
is non-destructive: the legitimate code stays usable until its own expiry or
a successful match. Two racing verifications of the correct code could both
observe it before either deletes; accepted as a low-value race on a
10-minute-lived secret.

Parameters:
  - context: context.Context
  - email: string
  - candidate: string

Returns:
  - bool: true iff the candidate matched a live code
  - error: Connectivity failures (absence is false, nil)
*/
func (store *RedisOTPStore) VerifyAndConsume(context context.Context, email, candidate string) (bool, error) {
	key := otpKeyPrefix + email

	stored, err := store.client.Get(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Expired or never issued.
			return false, nil
		}
		return false, fmt.Errorf("redis_otp_lookup_failed: %w", err)
	}

	if stored != candidate {
		return false, nil
	}

	if err := store.client.Del(context, key).Err(); err != nil {
		return false, fmt.Errorf("redis_otp_consume_failed: %w", err)
	}

	return true, nil
}

/*
CanRequest reports whether the email is outside its request cooldown.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - bool: true if a new forgot-password request is allowed
  - error: Connectivity failures
*/
func (store *RedisOTPStore) CanRequest(context context.Context, email string) (bool, error) {
	exists, err := store.client.Exists(context, otpCooldownKeyPrefix+email).Result()
	if err != nil {
		return false, fmt.Errorf("redis_otp_cooldown_check_failed: %w", err)
	}
	return exists == 0, nil
}

/*
MarkRequested sets the cooldown marker with the [OTPCooldown] TTL.

Description: Called only after the code and its email were successfully
dispatched — a user who never received a code is not throttled.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Persistence failures
*/
func (store *RedisOTPStore) MarkRequested(context context.Context, email string) error {
	if err := store.client.Set(context, otpCooldownKeyPrefix+email, "1", OTPCooldown).Err(); err != nil {
		return fmt.Errorf("redis_otp_mark_requested_failed: %w", err)
	}
	return nil
}

/*
CooldownRemaining returns the time left in the email's request cooldown.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - time.Duration: Zero when no cooldown is active
  - error: Connectivity failures
*/
func (store *RedisOTPStore) CooldownRemaining(context context.Context, email string) (time.Duration, error) {
	remaining, err := store.client.TTL(context, otpCooldownKeyPrefix+email).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_otp_cooldown_ttl_failed: %w", err)
	}
	if remaining < 0 {
		// -1 (no expiry) and -2 (missing key) both mean "not throttled".
		return 0, nil
	}
	return remaining, nil
}
