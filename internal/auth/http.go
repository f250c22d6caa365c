// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

/*
HTTP delivery layer for staff authentication.

It implements the public gateway for the credential lifecycle: login and
the two halves of self-service password recovery.

# Architecture

The handler acts as a thin mediation layer between the web and the domain
service:
  - Protocol: Standard RESTful JSON interface.
  - Security: Issues bearer credentials; recovery responses stay neutral.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes,
headers, JSON).
*/

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/clinicore/clinicore/internal/platform/request"
	"github.com/clinicore/clinicore/internal/platform/respond"
	"github.com/clinicore/clinicore/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the unauthenticated entry points (Login, Password
// Recovery). Administrative account operations live in the admin package.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /login           : Authenticates and returns a bearer credential.
//   - POST /forgot-password : Issues a recovery token (neutral response).
//   - POST /reset-password  : Redeems a recovery token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/login", handler.login)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	return router
}

// # Request Payloads

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Username string `json:"username"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

/*
Login authenticates a staff member and issues a bearer credential.

POST /api/v1/auth/login

Description: Verifies credentials and returns a fixed-lifetime JWT together
with the forced-change flag. Unknown-username and wrong-password failures
are indistinguishable in the response.

Request:
  - Body: loginRequest (Username, Password)

Response:
  - 200: Credential: Access token, token type, expiry, forced-change flag
  - 401: InvalidCredentials: Generic credential failure
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	credential, err := handler.authService.Login(request.Context(), LoginInput{
		Username: input.Username,
		Password: input.Password,
		Origin:   requestutil.Origin(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, credential)
}

/*
ForgotPassword starts the self-service recovery flow.

POST /api/v1/auth/forgot-password

Description: Always returns the same neutral acknowledgment, whether or not
the username exists. When it does, a single-use recovery token is issued
for out-of-band delivery.

Request:
  - Body: forgotPasswordRequest (Username)

Response:
  - 200: Neutral acknowledgment message, always
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestPasswordReset(request.Context(), input.Username, requestutil.Origin(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "If the account exists, password reset instructions have been issued",
	})
}

/*
ResetPassword completes the self-service recovery flow.

POST /api/v1/auth/reset-password

Description: Redeems the recovery token (single use, atomic) and installs
the new password. Consumed, expired, and unknown tokens produce the same
generic failure.

Request:
  - Body: resetPasswordRequest (Token, NewPassword min 8 chars)

Response:
  - 200: Success message
  - 400: InvalidOrExpiredToken: Redemption failure
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldToken, input.Token).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, MinPasswordLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Token, input.NewPassword, requestutil.Origin(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password has been reset",
	})
}
