// Copyright (c) 2026 SecureAuth. All rights reserved.

package auth_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/adewumi/secureauth/internal/auth"
	"github.com/adewumi/secureauth/internal/platform/apperr"
	"github.com/adewumi/secureauth/internal/platform/sec"
)

// newRedis spins up an in-process Redis and a client pointed at it.
func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, rdb
}

// stubUserRepo is an in-memory UserRepository that counts store reads, so
// tests can assert whether a call was served from the cache or fell through.
type stubUserRepo struct {
	users     map[string]*auth.User
	findCalls int
	failAll   bool
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]*auth.User{}}
}

func (repo *stubUserRepo) Create(_ context.Context, user *auth.User) error {
	if repo.failAll {
		return fmt.Errorf("store down")
	}
	if _, exists := repo.users[user.Email]; exists {
		return apperr.Conflict("Email is already registered")
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	repo.users[user.Email] = user
	return nil
}

func (repo *stubUserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	repo.findCalls++
	if repo.failAll {
		return nil, fmt.Errorf("store down")
	}
	user, ok := repo.users[email]
	if !ok {
		return nil, apperr.NotFound("User not found with this email")
	}
	return user, nil
}

func (repo *stubUserRepo) UpdatePassword(_ context.Context, email, newHash string) error {
	user, ok := repo.users[email]
	if !ok {
		return apperr.NotFound("User not found with this email")
	}
	user.PasswordHash = newHash
	return nil
}

func (repo *stubUserRepo) SoftDelete(_ context.Context, email string) error {
	delete(repo.users, email)
	return nil
}

// stubTokens issues deterministic opaque tokens. Verification succeeds only
// for tokens this stub produced.
type stubTokens struct {
	issued map[string]string // token -> email
	serial int
}

func newStubTokens() *stubTokens {
	return &stubTokens{issued: map[string]string{}}
}

func (tokens *stubTokens) GenerateAccessToken(email string, _ time.Duration) (string, error) {
	tokens.serial++
	token := fmt.Sprintf("token-%d", tokens.serial)
	tokens.issued[token] = email
	return token, nil
}

func (tokens *stubTokens) VerifyToken(tokenString string) (*sec.AuthClaims, error) {
	email, ok := tokens.issued[tokenString]
	if !ok {
		return nil, sec.ErrInvalidToken
	}
	return &sec.AuthClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: email}}, nil
}

// stubMailer records dispatched reset codes and can be told to fail.
type stubMailer struct {
	sentTo   []string
	lastCode string
	fail     bool
}

func (mailer *stubMailer) SendPasswordResetCode(_ context.Context, email, _, code string) error {
	if mailer.fail {
		return fmt.Errorf("smtp down")
	}
	mailer.sentTo = append(mailer.sentTo, email)
	mailer.lastCode = code
	return nil
}

// stubEnqueuer records confirmation jobs.
type stubEnqueuer struct {
	enqueued []string
}

func (enqueuer *stubEnqueuer) EnqueueResetSuccess(_ context.Context, email, _ string, _ time.Time) error {
	enqueuer.enqueued = append(enqueuer.enqueued, email)
	return nil
}

// serviceFixture bundles a fully wired Service with every collaborator
// exposed for assertions.
type serviceFixture struct {
	service  *auth.Service
	redis    *miniredis.Miniredis
	repo     *stubUserRepo
	tokens   *stubTokens
	mailer   *stubMailer
	enqueuer *stubEnqueuer
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	mr, rdb := newRedis(t)
	repo := newStubUserRepo()
	gateway := auth.NewCacheGateway(rdb, repo, nil)
	tokens := newStubTokens()
	mailer := &stubMailer{}
	enqueuer := &stubEnqueuer{}

	service := auth.NewService(
		gateway,
		repo,
		auth.NewSessionRegistry(rdb),
		auth.NewOTPStore(rdb),
		tokens,
		mailer,
		enqueuer,
		nil,
	)

	return &serviceFixture{
		service:  service,
		redis:    mr,
		repo:     repo,
		tokens:   tokens,
		mailer:   mailer,
		enqueuer: enqueuer,
	}
}

// registerUser enrolls an account through the real registration flow and
// returns the issued session.
func (fixture *serviceFixture) registerUser(t *testing.T, email, password string) *auth.AuthSession {
	t.Helper()

	session, err := fixture.service.Register(context.Background(), auth.RegisterInput{
		Name:     "Jane Doe",
		Email:    email,
		Phone:    "0123456789",
		Password: password,
	})
	require.NoError(t, err)
	return session
}
