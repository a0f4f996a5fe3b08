// Copyright (c) 2026 SecureAuth. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away common body decoding patterns and identity extraction,
ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/adewumi/secureauth/internal/platform/apperr"
	"github.com/adewumi/secureauth/internal/platform/ctxutil"
	"github.com/adewumi/secureauth/internal/platform/sec"
	"github.com/adewumi/secureauth/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Claims extracts the authenticated user claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the user claims.

Returns:
  - *sec.AuthClaims: The authenticated user claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {

	// Get user claims
	claims := ctxutil.GetAuthUser(request.Context())

	// If the user is not authenticated, return an error
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return claims, nil
}

/*
RequiredEmail returns the email identity of the currently logged-in user.

Returns:
  - string: Account email
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredEmail(request *http.Request) (string, error) {

	// Get user claims
	claims, err := RequiredClaims(request)

	// If the user is not authenticated, return an error
	if err != nil {
		return "", err
	}

	return claims.Email(), nil
}

/*
BearerToken extracts the raw token string from the Authorization header.

Returns an empty string when the header is missing or malformed.
*/
func BearerToken(request *http.Request) string {
	return sec.ExtractBearerToken(request.Header.Get("Authorization"))
}
