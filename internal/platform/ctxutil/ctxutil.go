// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
//
// Three request-scoped values flow through Clinicore contexts: the request ID
// minted at the edge, the per-request logger derived from it, and the verified
// staff claims set by the authentication middleware. The audit recorder and the
// error responder read them back from deep inside the call stack, which is why
// they travel on the context rather than as parameters.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/clinicore/clinicore/internal/platform/ctxkey"
	"github.com/clinicore/clinicore/internal/platform/sec"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithAuthUser returns a new context with the provided staff claims attached.
func WithAuthUser(ctx context.Context, user *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, user)
}

// GetAuthUser retrieves the verified staff claims from the context.
// Returns nil for anonymous requests, e.g. login and forgot-password.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, ok := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	if !ok {
		return nil
	}
	return claims
}
