// Copyright (c) 2026 SecureAuth. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adewumi/secureauth/internal/platform/apperr"
)

// # Session Registry

// RedisSessionRegistry implements [SessionRegistry] on Redis.
//
// The registry is the source of revocation truth: a token absent from the
// cache is unconditionally invalid, even if its signature would still
// verify. This dual role (accelerator + revocation list) is deliberate and
// is isolated behind the [SessionRegistry] interface so an alternative
// backing could be substituted without touching the orchestrator.
type RedisSessionRegistry struct {
	client *redis.Client
}

// NewSessionRegistry creates a new Redis-backed SessionRegistry.
func NewSessionRegistry(client *redis.Client) *RedisSessionRegistry {
	return &RedisSessionRegistry{client: client}
}

/*
Issue stores token:{token} -> email with a fixed absolute TTL.

Description: Existing tokens for the same email are untouched; concurrency
policy (single vs multiple sessions) belongs to the orchestrator.

Parameters:
  - context: context.Context
  - email: string
  - token: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (registry *RedisSessionRegistry) Issue(context context.Context, email, token string, ttl time.Duration) error {
	key := tokenKeyPrefix + token

	if err := registry.client.Set(context, key, email, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_issue_failed: %w", err)
	}

	return nil
}

/*
Resolve returns the email bound to a token.

Description: Cache lookup only — no store fallback. Absence means the token
was revoked or expired.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - string: Bound email
  - error: apperr.Unauthorized or connectivity errors
*/
func (registry *RedisSessionRegistry) Resolve(context context.Context, token string) (string, error) {
	key := tokenKeyPrefix + token

	email, err := registry.client.Get(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.Unauthorized("Invalid or expired token")
		}
		return "", fmt.Errorf("redis_session_resolve_failed: %w", err)
	}

	return email, nil
}

/*
Revoke deletes a single token entry.

Description: Idempotent — revoking an absent token is not an error.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Deletion failures
*/
func (registry *RedisSessionRegistry) Revoke(context context.Context, token string) error {
	if err := registry.client.Del(context, tokenKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("redis_session_revoke_failed: %w", err)
	}
	return nil
}

/*
RevokeAll deletes every token entry bound to the given email.

Description: Scans the token:* key space and deletes each entry whose bound
email matches. O(total live tokens) and non-atomic: a token issued mid-scan
may be missed. Revocation is eventual, which is the accepted trade-off at
this scale.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - int: Number of entries deleted
  - error: Enumeration failures
*/
func (registry *RedisSessionRegistry) RevokeAll(context context.Context, email string) (int, error) {
	var (
		cursor  uint64
		revoked int
	)

	for {
		keys, nextCursor, err := registry.client.Scan(context, cursor, tokenKeyPrefix+"*", tokenScanBatch).Result()
		if err != nil {
			return revoked, fmt.Errorf("redis_session_revoke_all_scan_failed: %w", err)
		}

		for _, key := range keys {
			boundEmail, err := registry.client.Get(context, key).Result()
			if err != nil {
				// Entry expired between SCAN and GET. Skip it.
				continue
			}
			if boundEmail != email {
				continue
			}
			if err := registry.client.Del(context, key).Err(); err != nil {
				return revoked, fmt.Errorf("redis_session_revoke_all_delete_failed: %w", err)
			}
			revoked++
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return revoked, nil
}
