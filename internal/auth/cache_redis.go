// Copyright (c) 2026 SecureAuth. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adewumi/secureauth/internal/platform/apperr"
	"github.com/adewumi/secureauth/internal/platform/ctxutil"
	"github.com/adewumi/secureauth/internal/platform/metrics"
	"github.com/adewumi/secureauth/internal/platform/sec"
)

// # User Cache Gateway

// CacheGateway serves complete user records with cache-aside semantics and
// activity-weighted expiry.
//
// # Read Path
//
// Every read checks Redis first. A hit refreshes the entry's TTL using the
// current activity classification (sliding window — every read extends the
// life of a hot entry). A miss, a deserialize failure, or an unreachable
// cache all degrade to the relational store, and a store hit repopulates
// the cache. Cache unavailability never fails a call.
type CacheGateway struct {
	client *redis.Client
	users  UserRepository
	stats  *metrics.Metrics
}

// NewCacheGateway constructs a gateway over the given cache and store.
// stats may be nil when instrumentation is not wired (tests).
func NewCacheGateway(client *redis.Client, users UserRepository, stats *metrics.Metrics) *CacheGateway {
	return &CacheGateway{client: client, users: users, stats: stats}
}

/*
GetComplete returns the full cached record (profile + credential hash) for
an email, consulting the cache first and falling back to the store.

Description: The canonical cache-aside read. A store-resolved miss always
repopulates the cache before returning.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *CachedUser: Hydrated record
  - error: apperr.NotFound if no live account exists, or store failures
*/
func (gateway *CacheGateway) GetComplete(context context.Context, email string) (*CachedUser, error) {

	// ── 1. Cache Lookup ───────────────────────────────────────────────────
	payload, err := gateway.client.Get(context, userKeyPrefix+email).Result()
	if err == nil {
		cached := &CachedUser{}
		if unmarshalErr := json.Unmarshal([]byte(payload), cached); unmarshalErr == nil {
			gateway.observeCache("hit")

			// Sliding window: push the expiry forward on every read hit.
			ttl := gateway.smartTTL(context, email)
			if expireErr := gateway.client.Expire(context, userKeyPrefix+email, ttl).Err(); expireErr != nil {
				ctxutil.GetLogger(context).Warn("user_cache_ttl_refresh_failed",
					slog.String("email", email),
					slog.Any("error", expireErr),
				)
			}
			return cached, nil
		}
		// A corrupt entry is treated as a miss and overwritten below.
		ctxutil.GetLogger(context).Warn("user_cache_corrupt_entry", slog.String("email", email))
	} else if !errors.Is(err, redis.Nil) {
		// Cache outage: degrade to the store, never fail the call.
		gateway.observeCache("degraded")
		ctxutil.GetLogger(context).Warn("user_cache_unavailable",
			slog.String("email", email),
			slog.Any("error", err),
		)
	} else {
		gateway.observeCache("miss")
	}

	// ── 2. Store Fallback ─────────────────────────────────────────────────
	user, err := gateway.users.FindByEmail(context, email)
	if err != nil {
		return nil, err
	}

	// ── 3. Repopulate ─────────────────────────────────────────────────────
	cached := user.Cached()
	if writeErr := gateway.Write(context, email, cached); writeErr != nil {
		ctxutil.GetLogger(context).Warn("user_cache_repopulate_failed",
			slog.String("email", email),
			slog.Any("error", writeErr),
		)
	}

	return cached, nil
}

/*
GetProfile is the public-fields projection of [CacheGateway.GetComplete].
The credential hash never leaves the gateway through this path.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *UserResource: Public profile
  - error: apperr.NotFound or store failures
*/
func (gateway *CacheGateway) GetProfile(context context.Context, email string) (*UserResource, error) {
	cached, err := gateway.GetComplete(context, email)
	if err != nil {
		return nil, err
	}
	resource := cached.UserResource
	return &resource, nil
}

/*
Write serializes and stores the record under user:{email} with the current
smart TTL, unconditionally overwriting any prior entry (last-writer-wins).

Parameters:
  - context: context.Context
  - email: string
  - cached: *CachedUser

Returns:
  - error: Serialization or cache write failures
*/
func (gateway *CacheGateway) Write(context context.Context, email string, cached *CachedUser) error {
	payload, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("user_cache_marshal_failed: %w", err)
	}

	ttl := gateway.smartTTL(context, email)
	if err := gateway.client.Set(context, userKeyPrefix+email, payload, ttl).Err(); err != nil {
		return fmt.Errorf("user_cache_write_failed: %w", err)
	}

	return nil
}

/*
Authenticate verifies a password against the cached (or freshly loaded)
credential hash.

Description: On success the activity counter is incremented — one increment
per successful authenticated access — and the public profile is returned.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *UserResource: Public profile on success
  - error: apperr.NotFound (unknown email) or apperr.Unauthorized (bad password)
*/
func (gateway *CacheGateway) Authenticate(context context.Context, email, password string) (*UserResource, error) {
	cached, err := gateway.GetComplete(context, email)
	if err != nil {
		return nil, err
	}

	if !sec.CheckPasswordHash(password, cached.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	gateway.IncrementActivity(context, email)

	resource := cached.UserResource
	return &resource, nil
}

/*
Invalidate deletes the cache entry for an email. Used after destructive
mutations when the caller chooses not to re-cache immediately.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Deletion failures
*/
func (gateway *CacheGateway) Invalidate(context context.Context, email string) error {
	if err := gateway.client.Del(context, userKeyPrefix+email).Err(); err != nil {
		return fmt.Errorf("user_cache_invalidate_failed: %w", err)
	}
	return nil
}

// # Activity Tracking

// IncrementActivity bumps the per-email access counter and renews its
// 30-day window. Best-effort: failures are logged, never propagated.
func (gateway *CacheGateway) IncrementActivity(context context.Context, email string) {
	key := activityKeyPrefix + email

	if err := gateway.client.Incr(context, key).Err(); err != nil {
		ctxutil.GetLogger(context).Warn("activity_increment_failed",
			slog.String("email", email),
			slog.Any("error", err),
		)
		return
	}
	_ = gateway.client.Expire(context, key, ActivityWindow).Err()
}

// InitializeActivity seeds the counter at 1 for a freshly registered
// account. Best-effort, like all activity writes.
func (gateway *CacheGateway) InitializeActivity(context context.Context, email string) {
	key := activityKeyPrefix + email
	if err := gateway.client.Set(context, key, 1, ActivityWindow).Err(); err != nil {
		ctxutil.GetLogger(context).Warn("activity_initialize_failed",
			slog.String("email", email),
			slog.Any("error", err),
		)
	}
}

// # Smart TTL Policy

// smartTTL sizes an entry's lifetime from the account's activity counter:
//
//	count > 10 -> 30 days (highly active)
//	count > 3  -> 7 days  (regular)
//	otherwise  -> 24 hours (new or dormant)
//
// An unreadable counter (cache outage) defaults to the medium tier, a
// missing counter to the short tier.
func (gateway *CacheGateway) smartTTL(context context.Context, email string) time.Duration {
	raw, err := gateway.client.Get(context, activityKeyPrefix+email).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return CacheTTLShort
		}
		return CacheTTLMedium
	}

	count, err := strconv.Atoi(raw)
	if err != nil {
		return CacheTTLShort
	}

	switch {
	case count > HighActivityThreshold:
		return CacheTTLLong
	case count > RegularActivityThreshold:
		return CacheTTLMedium
	default:
		return CacheTTLShort
	}
}

// observeCache records a cache outcome when instrumentation is wired.
func (gateway *CacheGateway) observeCache(outcome string) {
	if gateway.stats != nil {
		gateway.stats.CacheOperations.WithLabelValues(outcome).Inc()
	}
}
