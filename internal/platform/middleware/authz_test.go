// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinicore/internal/platform/middleware"
	"github.com/clinicore/clinicore/internal/platform/sec"
)

// # Test Doubles

// stubVerifier resolves a fixed set of opaque token strings to claims.
type stubVerifier struct {
	claims map[string]*sec.AuthClaims
}

func (s *stubVerifier) VerifyToken(tokenStr string) (*sec.AuthClaims, error) {
	claims, ok := s.claims[tokenStr]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return claims, nil
}

// newGatedRouter mounts a trivial handler behind Authenticate plus the
// patient-records permission gate, mirroring the production route layout.
func newGatedRouter(verifier middleware.TokenVerifier) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Authenticate(verifier))
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(sec.PermAccessPatientRecords))
		r.Get("/records", func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusOK)
		})
	})
	return router
}

func doGet(t *testing.T, handler http.Handler, path, authorization string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		request.Header.Set("Authorization", authorization)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

// # Gate Tests

func TestRequirePermission_Gate(t *testing.T) {
	verifier := &stubVerifier{claims: map[string]*sec.AuthClaims{
		"doctor-token": {IdentityID: "identity-doctor", Role: string(sec.RoleDoctor)},
		"nurse-token":  {IdentityID: "identity-nurse", Role: string(sec.RoleNurse)},
		"admin-token":  {IdentityID: "identity-admin", Role: string(sec.RoleAdmin)},
		"odd-token":    {IdentityID: "identity-odd", Role: "Janitor"},
	}}
	router := newGatedRouter(verifier)

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
	}{
		{"anonymous_rejected", "", http.StatusUnauthorized},
		{"malformed_header_rejected", "doctor-token", http.StatusUnauthorized},
		{"unknown_token_rejected", "Bearer forged-token", http.StatusUnauthorized},
		{"doctor_allowed", "Bearer doctor-token", http.StatusOK},
		{"nurse_allowed", "Bearer nurse-token", http.StatusOK},
		{"admin_forbidden", "Bearer admin-token", http.StatusForbidden},
		{"unknown_role_forbidden", "Bearer odd-token", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := doGet(t, router, "/records", tt.authorization)
			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

func TestAuthenticate_InjectsClaims(t *testing.T) {
	verifier := &stubVerifier{claims: map[string]*sec.AuthClaims{
		"doctor-token": {IdentityID: "identity-doctor", Role: string(sec.RoleDoctor)},
	}}

	var seen *sec.AuthClaims
	router := chi.NewRouter()
	router.Use(middleware.Authenticate(verifier))
	router.Get("/whoami", func(writer http.ResponseWriter, request *http.Request) {
		seen = middleware.GetUser(request.Context())
		writer.WriteHeader(http.StatusOK)
	})

	recorder := doGet(t, router, "/whoami", "Bearer doctor-token")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "identity-doctor", seen.IdentityID)
	assert.Equal(t, "Doctor", seen.Role)
}

func TestAuthenticate_AnonymousPassesThrough(t *testing.T) {
	router := chi.NewRouter()
	router.Use(middleware.Authenticate(&stubVerifier{}))
	router.Get("/whoami", func(writer http.ResponseWriter, request *http.Request) {
		assert.Nil(t, middleware.GetUser(request.Context()))
		writer.WriteHeader(http.StatusOK)
	})

	// No Authorization header: the request proceeds unauthenticated and
	// only permission-gated routes turn it away.
	recorder := doGet(t, router, "/whoami", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
}
