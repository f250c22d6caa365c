// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

/*
Package admin provides the HTTP delivery layer for administrative operations.

It groups everything behind the Admin role: staff provisioning, forced
password resets, role enumeration, and audit trail review. The package owns
no domain logic of its own — it mediates between the web and the auth
service plus the audit repository, which is why it has handlers but no
service of its own.
*/
package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinicore/clinicore/internal/audit"
	"github.com/clinicore/clinicore/internal/auth"
	"github.com/clinicore/clinicore/internal/platform/constants"
	"github.com/clinicore/clinicore/internal/platform/middleware"
	requestutil "github.com/clinicore/clinicore/internal/platform/request"
	"github.com/clinicore/clinicore/internal/platform/respond"
	"github.com/clinicore/clinicore/internal/platform/sec"
	"github.com/clinicore/clinicore/internal/platform/validate"
	"github.com/clinicore/clinicore/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements administration HTTP endpoints.
type Handler struct {
	authService *auth.Service
	auditEvents audit.EventRepository
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(authService *auth.Service, auditEvents audit.EventRepository) *Handler {
	return &Handler{
		authService: authService,
		auditEvents: auditEvents,
	}
}

// Routes returns a [chi.Router] configured with administration routes.
//
// # Endpoints
//   - POST /register-user  : Provisions a staff account.
//   - POST /reset-password : Installs a temporary password on an account.
//   - GET  /users          : Pages through the staff directory.
//   - GET  /roles          : Lists the fixed role set.
//   - GET  /audit-logs     : Pages through the security trail, newest first.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(sec.PermManageUsers))
		r.Post("/register-user", handler.registerUser)
		r.Post("/reset-password", handler.resetPassword)
		r.Get("/users", handler.listUsers)
		r.Get("/roles", handler.listRoles)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(sec.PermViewAuditLog))
		r.Get("/audit-logs", handler.listAuditLogs)
	})

	return router
}

// # Request Payloads

type registerUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	RoleName string `json:"role_name"`
}

type adminResetPasswordRequest struct {
	Username          string `json:"username"`
	TemporaryPassword string `json:"temporary_password"`
}

/*
RegisterUser provisions a new staff account.

POST /api/v1/admin/register-user

Request:
  - Body: registerUserRequest (Username max 64 chars, Password min 8 chars, RoleName)

Response:
  - 201: Identity: Created account (hash omitted)
  - 400: UnknownRole / DuplicateUsername / ValidationError
  - 403: Forbidden: Caller is not an Admin
*/
func (handler *Handler) registerUser(writer http.ResponseWriter, request *http.Request) {
	var input registerUserRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(auth.FieldUsername, input.Username).
		MaxLen(auth.FieldUsername, input.Username, auth.MaxUsernameLength).
		Required(auth.FieldPassword, input.Password).
		MinLen(auth.FieldPassword, input.Password, auth.MinPasswordLength).
		Required(auth.FieldRoleName, input.RoleName)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := handler.authService.RegisterIdentity(request.Context(), auth.RegisterInput{
		Username: input.Username,
		Password: input.Password,
		RoleName: input.RoleName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, identity)
}

/*
ResetPassword installs a temporary password on another staff account.

POST /api/v1/admin/reset-password

Description: Sets the supplied temporary password and flags the account for
a forced change at next login. The acting administrator is recorded as the
audit actor.

Request:
  - Body: adminResetPasswordRequest (Username, TemporaryPassword min 8 chars)

Response:
  - 200: Success message
  - 404: NotFound: Unknown account
  - 403: Forbidden: Caller is not an Admin
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input adminResetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(auth.FieldUsername, input.Username).
		Required(auth.FieldTemporaryPassword, input.TemporaryPassword).
		MinLen(auth.FieldTemporaryPassword, input.TemporaryPassword, auth.MinPasswordLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.AdminResetPassword(
		request.Context(),
		claims.IdentityID,
		input.Username,
		input.TemporaryPassword,
		requestutil.Origin(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		auth.FieldMessage: "Temporary password set; user must change it at next login",
	})
}

/*
ListUsers pages through the staff directory, ordered by username.

GET /api/v1/admin/users?page=1&limit=20

Description: Serves the admin dashboard's staff listing. Password hashes
never appear in the payload; the identity entity omits them from its JSON
mapping.

Response:
  - 200: Paginated []auth.Identity
  - 403: Forbidden: Caller is not an Admin
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	identities, total, err := handler.authService.ListIdentities(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, identities, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
ListRoles enumerates the fixed role set.

GET /api/v1/admin/roles

Response:
  - 200: []RoleRecord
*/
func (handler *Handler) listRoles(writer http.ResponseWriter, request *http.Request) {
	roles, err := handler.authService.ListRoles(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, roles)
}

/*
ListAuditLogs pages through the security trail, newest first.

GET /api/v1/admin/audit-logs?page=1&limit=200

Response:
  - 200: Paginated []audit.Event (page size capped at 200)
*/
func (handler *Handler) listAuditLogs(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequestWithMax(request, constants.AuditLogPageLimit)

	events, err := handler.auditEvents.ListRecent(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	total, err := handler.auditEvents.Count(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, events, pagination.NewMeta(params.Page, params.Limit, total))
}
