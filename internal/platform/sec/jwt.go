// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing, reset
// secrets) from the domain logic. It acts as an Infrastructure service
// injected into the Application layer via small interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the payload embedded inside a bearer token.
//
// # Why custom claims?
//
// By embedding the IdentityID, Username, and Role directly inside the JWT,
// the access-control gate can reconstruct the caller's identity and role
// WITHOUT querying the database on every single API request. The trade-off
// is statelessness: there is no revocation list, and a compromised token
// stays valid until expiry (or until the signing secret is rotated).
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	IdentityID string `json:"uid"`
	Username   string `json:"unm"`
	Role       string `json:"rol"`
}

// TokenService handles generation and verification of bearer tokens using HS256.
//
// The signing secret, issuer, and fixed token lifetime are injected at
// construction and never read from ambient state.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService creates a new TokenService.
//
// # Parameters
//   - secret: The server-held HS256 signing key.
//   - issuer: Value of the 'iss' claim.
//   - ttl: Fixed, non-renewable token lifetime (60 minutes in production).
func NewTokenService(secret string, issuer string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("sec: signing secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("sec: token ttl must be positive, got %s", ttl)
	}

	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

// GenerateAccessToken creates a signed bearer token for a staff identity.
// The expiry is absolute: issuance time plus the configured TTL.
func (service *TokenService) GenerateAccessToken(identityID, userName, role string) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.ttl)),
		},
		IdentityID: identityID,
		Username:   userName,
		Role:       role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// TTL returns the configured fixed token lifetime.
func (service *TokenService) TTL() time.Duration {
	return service.ttl
}

// VerifyToken checks the signature and validity of a bearer token string.
//
// Verification fails closed: a wrong signature, a malformed payload, an
// elapsed expiry, or missing subject/role claims all yield an error and a
// nil claims pointer.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, errors.New("sec: invalid token claims")
	}

	// Required claims: a token without an identity or role is useless to
	// the access gate and must not pass.
	if claims.IdentityID == "" || claims.Role == "" {
		return nil, errors.New("sec: token missing identity or role claim")
	}

	return claims, nil
}
