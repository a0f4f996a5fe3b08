// Copyright (c) 2026 SecureAuth. All rights reserved.

/*
HTTP delivery layer for the authentication core.

# Architecture

The handler acts as a thin mediation layer between the web and the domain
service:
  - Protocol: Standard RESTful JSON interface.
  - Security: Bearer token extraction is done by middleware; handlers only
    read the verified claims from the request context.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes,
headers, JSON).
*/

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adewumi/secureauth/internal/platform/middleware"
	requestutil "github.com/adewumi/secureauth/internal/platform/request"
	"github.com/adewumi/secureauth/internal/platform/respond"
	"github.com/adewumi/secureauth/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register        : Creates a new account and issues a token.
//   - POST /login           : Authenticates and returns a fresh token.
//   - POST /forgot-password : Starts the OTP reset flow.
//   - POST /reset-password  : Completes the OTP reset flow.
//   - POST /logout          : (auth) Revokes all sessions for the identity.
//   - GET  /profile         : (auth) Returns the caller's public profile.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Get("/profile", handler.profile)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email           string `json:"email"`
	OTP             string `json:"otp"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Description: Validates input, checks for identity conflicts, and persists a
new account. Returns the profile together with its first session token.

Request:
  - Body: registerRequest (Name, Email, Phone, Password, PasswordConfirmation)

Response:
  - 201: AuthSession: Created profile and token
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, 100).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		LenBetween(FieldPhone, input.Phone, 10, 15).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 6).
		Equals(FieldPasswordConfirmation, input.PasswordConfirmation, input.Password, "Passwords do not match")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Register(request.Context(), RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: input.Password,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, session)
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials through the cache gateway and issues a
fresh session token, revoking any prior sessions for the account.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: AuthSession: Profile and token
  - 401: ErrUnauthorized: Invalid credentials
  - 404: ErrNotFound: No account for this email
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

/*
Logout terminates every session bound to the authenticated identity.

POST /api/v1/auth/logout

Description: Revokes all registry entries for the caller's email — not just
the presented token — forcing re-authentication on every device.

Response:
  - 200: revoked_count: Number of sessions invalidated
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	email, err := requestutil.RequiredEmail(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	revoked, err := handler.authService.Logout(request.Context(), email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]int{"revoked_count": revoked})
}

/*
Profile returns the authenticated caller's public profile.

GET /api/v1/auth/profile

Response:
  - 200: UserResource: Public profile
  - 401: ErrUnauthorized: Authentication required
  - 404: ErrNotFound: Account was deleted after the token was issued
*/
func (handler *Handler) profile(writer http.ResponseWriter, request *http.Request) {
	email, err := requestutil.RequiredEmail(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.authService.Profile(request.Context(), email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
ForgotPassword initiates the password recovery flow.

POST /api/v1/auth/forgot-password

Description: Issues a 6-digit one-time code, emails it to the account owner,
and starts the per-email cooldown window.

Request:
  - Body: forgotPasswordRequest (Email)

Response:
  - 200: ForgotPasswordResult: Code lifetime and cooldown window
  - 404: ErrNotFound: No account for this email
  - 429: ErrRateLimited: Cooldown still active (includes Retry-After)
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.ForgotPassword(request.Context(), input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
ResetPassword completes the password recovery flow.

POST /api/v1/auth/reset-password

Description: Verifies and consumes the one-time code, rotates the credential
hash, and revokes every active session for the account.

Request:
  - Body: resetPasswordRequest (Email, OTP, NewPassword, ConfirmPassword)

Response:
  - 200: Message: Password updated
  - 404: ErrNotFound: No account for this email
  - 422: ErrUnprocessable: Wrong or expired code
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldOTP, input.OTP).
		Custom(FieldOTP, len(input.OTP) != 6, "Must be a 6-digit code").
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, 6).
		Equals(FieldConfirmPassword, input.ConfirmPassword, input.NewPassword, "Passwords do not match")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.ResetPassword(request.Context(), input.Email, input.OTP, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password updated successfully",
	})
}
