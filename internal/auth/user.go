// Copyright (c) 2026 SecureAuth. All rights reserved.

/*
Package auth implements the user identity and session management core.

It defines the domain entities (User, CachedUser) and the logic for
registration, authentication, session revocation, and OTP password recovery.

# Architecture

This layer is the "Truth" of the system. The relational store is the system
of record for accounts; Redis carries the derived state (cached user records,
the live session registry, one-time codes, and activity counters).
*/
package auth

import "time"

// # Domain Entities

// User represents a registered account as stored in the relational store.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	PasswordHash string     `json:"-"` // Explicitly omitted from JSON for security.
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"` // Soft-delete marker. Deleted rows never authenticate.
}

// UserResource is the public projection of a [User]. It is the only shape
// ever returned to external callers — never the credential hash.
type UserResource struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CachedUser is the cache-resident mirror of an account: the public profile
// plus the credential hash, cached together so login can authenticate
// without touching the relational store.
//
// # Safety
//
// CachedUser must never be serialized into an HTTP response. Handlers and
// the service layer only ever expose the embedded [UserResource].
type CachedUser struct {
	UserResource
	PasswordHash string `json:"password_hash"`
}

// Resource returns the public projection of the user.
func (user *User) Resource() UserResource {
	return UserResource{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// Cached returns the cache-resident mirror of the user.
func (user *User) Cached() *CachedUser {
	return &CachedUser{
		UserResource: user.Resource(),
		PasswordHash: user.PasswordHash,
	}
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldName                 = "name"
	FieldEmail                = "email"
	FieldPhone                = "phone"
	FieldPassword             = "password"
	FieldPasswordConfirmation = "password_confirmation"
	FieldNewPassword          = "new_password"
	FieldConfirmPassword      = "confirm_password"
	FieldOTP                  = "otp"
	FieldToken                = "token"
	FieldUser                 = "user"
	FieldMessage              = "message"
)
