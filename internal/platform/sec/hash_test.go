// Copyright (c) 2026 SecureAuth. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adewumi/secureauth/internal/platform/sec"
)

/*
TestHashPassword_RoundTrip verifies that a hashed password validates against
its original plain text and nothing else.
*/
func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := sec.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	// Bcrypt hashes are salted, so the plain text must never leak through.
	assert.NotContains(t, hash, "correct horse")

	assert.True(t, sec.CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, sec.CheckPasswordHash("wrong password", hash))
}

/*
TestCheckPasswordHash_MalformedHash verifies that a corrupted stored hash
degrades to a failed comparison rather than a panic or error.
*/
func TestCheckPasswordHash_MalformedHash(t *testing.T) {
	assert.False(t, sec.CheckPasswordHash("anything", "not-a-bcrypt-hash"))
	assert.False(t, sec.CheckPasswordHash("anything", ""))
}

/*
TestHashPassword_UniqueSalts verifies that hashing the same password twice
produces different digests.
*/
func TestHashPassword_UniqueSalts(t *testing.T) {
	first, err := sec.HashPassword("secret123")
	require.NoError(t, err)

	second, err := sec.HashPassword("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
