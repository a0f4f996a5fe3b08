// Copyright (c) 2026 SecureAuth. All rights reserved.

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adewumi/secureauth/internal/auth"
	"github.com/adewumi/secureauth/internal/platform/apperr"
	"github.com/adewumi/secureauth/internal/platform/sec"
)

const (
	testEmail    = "jane@example.com"
	testPassword = "secret123"
)

func seedAccount(t *testing.T, repo *stubUserRepo, email, password string) *auth.User {
	t.Helper()

	hash, err := sec.HashPassword(password)
	require.NoError(t, err)

	user := &auth.User{
		ID:           "0191a2b3-0000-7000-8000-000000000001",
		Name:         "Jane Doe",
		Email:        email,
		Phone:        "0123456789",
		PasswordHash: hash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	repo.users[email] = user
	return user
}

/*
TestCacheGateway_MissRepopulates verifies the cache-aside read path: a cold
cache falls through to the store and writes the record back.
*/
func TestCacheGateway_MissRepopulates(t *testing.T) {
	mr, rdb := newRedis(t)
	repo := newStubUserRepo()
	seedAccount(t, repo, testEmail, testPassword)
	gateway := auth.NewCacheGateway(rdb, repo, nil)

	cached, err := gateway.GetComplete(context.Background(), testEmail)
	require.NoError(t, err)
	assert.Equal(t, testEmail, cached.Email)
	assert.Equal(t, 1, repo.findCalls)

	// The record is now cache-resident with the short tier (no activity yet).
	require.True(t, mr.Exists("user:"+testEmail))
	assert.InDelta(t, (24 * time.Hour).Seconds(), mr.TTL("user:"+testEmail).Seconds(), 60)

	// A second read is served without touching the store.
	_, err = gateway.GetComplete(context.Background(), testEmail)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.findCalls)
}

/*
TestCacheGateway_ActivityTiers exercises the TTL classification boundaries:
counts at and just past each threshold must land in the right tier.
*/
func TestCacheGateway_ActivityTiers(t *testing.T) {
	tests := []struct {
		name     string
		activity string
		wantTTL  time.Duration
	}{
		{"no_counter", "", 24 * time.Hour},
		{"at_regular_threshold", "3", 24 * time.Hour},
		{"just_past_regular", "4", 7 * 24 * time.Hour},
		{"at_high_threshold", "10", 7 * 24 * time.Hour},
		{"just_past_high", "11", 30 * 24 * time.Hour},
		{"garbage_counter", "not-a-number", 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr, rdb := newRedis(t)
			repo := newStubUserRepo()
			user := seedAccount(t, repo, testEmail, testPassword)
			gateway := auth.NewCacheGateway(rdb, repo, nil)

			if tt.activity != "" {
				require.NoError(t, mr.Set("activity:"+testEmail, tt.activity))
			}

			require.NoError(t, gateway.Write(context.Background(), testEmail, user.Cached()))
			assert.InDelta(t, tt.wantTTL.Seconds(), mr.TTL("user:"+testEmail).Seconds(), 60)
		})
	}
}

/*
TestCacheGateway_SlidingWindow verifies that every read hit pushes the cache
entry's expiry forward instead of letting it run down.
*/
func TestCacheGateway_SlidingWindow(t *testing.T) {
	mr, rdb := newRedis(t)
	repo := newStubUserRepo()
	user := seedAccount(t, repo, testEmail, testPassword)
	gateway := auth.NewCacheGateway(rdb, repo, nil)

	require.NoError(t, mr.Set("activity:"+testEmail, "11"))
	require.NoError(t, gateway.Write(context.Background(), testEmail, user.Cached()))

	// Let a day of the 30-day lifetime elapse.
	mr.FastForward(24 * time.Hour)
	assert.Less(t, mr.TTL("user:"+testEmail), 30*24*time.Hour-time.Hour)

	// A read hit restores the full tier lifetime.
	_, err := gateway.GetComplete(context.Background(), testEmail)
	require.NoError(t, err)
	assert.InDelta(t, (30 * 24 * time.Hour).Seconds(), mr.TTL("user:"+testEmail).Seconds(), 60)
	assert.Equal(t, 0, repo.findCalls)
}

/*
TestCacheGateway_CorruptEntry verifies that an undecodable cache entry is
treated as a miss and overwritten from the store.
*/
func TestCacheGateway_CorruptEntry(t *testing.T) {
	mr, rdb := newRedis(t)
	repo := newStubUserRepo()
	seedAccount(t, repo, testEmail, testPassword)
	gateway := auth.NewCacheGateway(rdb, repo, nil)

	require.NoError(t, mr.Set("user:"+testEmail, "{definitely-not-json"))

	cached, err := gateway.GetComplete(context.Background(), testEmail)
	require.NoError(t, err)
	assert.Equal(t, testEmail, cached.Email)
	assert.Equal(t, 1, repo.findCalls)

	// The broken entry was replaced; the next read hits the cache.
	_, err = gateway.GetComplete(context.Background(), testEmail)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.findCalls)
}

/*
TestCacheGateway_CacheOutageDegrades verifies that an unreachable cache never
fails the read: the call degrades to the store.
*/
func TestCacheGateway_CacheOutageDegrades(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := newStubUserRepo()
	seedAccount(t, repo, testEmail, testPassword)
	gateway := auth.NewCacheGateway(rdb, repo, nil)

	// Take the cache down before the first read.
	mr.Close()

	cached, getErr := gateway.GetComplete(context.Background(), testEmail)
	require.NoError(t, getErr)
	assert.Equal(t, testEmail, cached.Email)
	assert.Equal(t, 1, repo.findCalls)
}

/*
TestCacheGateway_Authenticate covers the credential check and its activity
side effect.
*/
func TestCacheGateway_Authenticate(t *testing.T) {
	mr, rdb := newRedis(t)
	repo := newStubUserRepo()
	seedAccount(t, repo, testEmail, testPassword)
	gateway := auth.NewCacheGateway(rdb, repo, nil)

	t.Run("correct_password", func(t *testing.T) {
		profile, err := gateway.Authenticate(context.Background(), testEmail, testPassword)
		require.NoError(t, err)
		assert.Equal(t, testEmail, profile.Email)

		// One successful access, one increment.
		count, err := mr.Get("activity:" + testEmail)
		require.NoError(t, err)
		assert.Equal(t, "1", count)
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := gateway.Authenticate(context.Background(), testEmail, "wrong-password")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "UNAUTHORIZED", ae.Code)

		// Failed attempts never count as activity.
		count, getErr := mr.Get("activity:" + testEmail)
		require.NoError(t, getErr)
		assert.Equal(t, "1", count)
	})

	t.Run("unknown_email", func(t *testing.T) {
		_, err := gateway.Authenticate(context.Background(), "ghost@example.com", testPassword)
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "NOT_FOUND", ae.Code)
	})
}
