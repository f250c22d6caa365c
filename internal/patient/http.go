// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package patient

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinicore/clinicore/internal/platform/middleware"
	requestutil "github.com/clinicore/clinicore/internal/platform/request"
	"github.com/clinicore/clinicore/internal/platform/respond"
	"github.com/clinicore/clinicore/internal/platform/sec"
	"github.com/clinicore/clinicore/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements patient-record HTTP endpoints.
type Handler struct {
	patientService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{patientService: service}
}

// Routes returns a [chi.Router] configured with patient-record routes.
//
// Every route requires an authenticated clinical role (Doctor or Nurse).
// Admins manage accounts and review the trail but do not read records.
//
// # Endpoints
//   - GET  /{patientID}             : Reads a record (cached).
//   - POST /{patientID}/break-glass : Emergency read with justification.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(sec.PermAccessPatientRecords))
		r.Get("/{patientID}", handler.get)
		r.Post("/{patientID}/break-glass", handler.breakGlass)
	})

	return router
}

// # Request Payloads

type breakGlassRequest struct {
	Reason string `json:"reason"`
}

/*
Get serves a single patient record.

GET /api/v1/patients/{patientID}

Response:
  - 200: Patient: Hydrated record
  - 404: NotFound: Unknown patient identifier
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	patientID, err := requestutil.Int64Param(request, "patientID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.patientService.Get(request.Context(), patientID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, record)
}

/*
BreakGlass serves a patient record through the emergency override.

POST /api/v1/patients/{patientID}/break-glass

Description: Requires a non-empty justification. The access is written to
the audit trail before the record is returned; a missing record still
yields 404, but the trail entry stands.

Request:
  - Body: breakGlassRequest (Reason)

Response:
  - 200: Patient: Hydrated record
  - 400: ValidationError: Missing justification
  - 404: NotFound: Unknown patient identifier (access still audited)
*/
func (handler *Handler) breakGlass(writer http.ResponseWriter, request *http.Request) {
	patientID, err := requestutil.Int64Param(request, "patientID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input breakGlassRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Custom(FieldPatientID, patientID < 1, "Must be a positive identifier").
		Required(FieldReason, input.Reason)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.patientService.BreakGlass(
		request.Context(),
		claims.IdentityID,
		patientID,
		input.Reason,
		requestutil.Origin(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, record)
}
