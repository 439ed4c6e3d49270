// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec holds the credential primitives: bcrypt password hashes and the
// RS256 session tokens handed to browsers.
package sec

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidClaims is returned for a well-signed token missing its user or session.
var ErrInvalidClaims = errors.New("sec: token lacks user or session")

// AuthClaims is the session token payload.
//
// A token names both its user and its server-side session, so revoking the
// session invalidates a token that is otherwise still signed and unexpired.
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
}

// TokenService signs and verifies session tokens with one RSA key pair.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	parser     *jwt.Parser
}

/*
NewTokenService loads a PEM key pair from disk.

Parameters:
  - privateKeyPath: PKCS#1 or PKCS#8 RSA private key
  - publicKeyPath: PKIX RSA public key
  - issuer: value written to and required in the iss claim

Returns:
  - *TokenService
  - error: Read or parse failures, naming the offending file
*/
func NewTokenService(privateKeyPath, publicKeyPath, issuer string) (*TokenService, error) {
	privateKey, err := loadPEM(privateKeyPath, jwt.ParseRSAPrivateKeyFromPEM)
	if err != nil {
		return nil, err
	}
	publicKey, err := loadPEM(publicKeyPath, jwt.ParseRSAPublicKeyFromPEM)
	if err != nil {
		return nil, err
	}
	return NewTokenServiceFromKeys(privateKey, publicKey, issuer), nil
}

func loadPEM[K any](path string, parse func([]byte) (K, error)) (K, error) {
	var zero K
	raw, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("sec: read key %s: %w", path, err)
	}
	key, err := parse(raw)
	if err != nil {
		return zero, fmt.Errorf("sec: parse key %s: %w", path, err)
	}
	return key, nil
}

// NewTokenServiceFromKeys builds a TokenService from parsed keys. Tests use
// it with freshly generated keys.
func NewTokenServiceFromKeys(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, issuer string) *TokenService {
	return &TokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// GenerateSessionToken signs a token for sessionID that expires after timeToLive.
func (service *TokenService) GenerateSessionToken(userID, sessionID string, timeToLive time.Duration) (string, error) {
	issuedAt := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(timeToLive)),
		},
		UserID:    userID,
		SessionID: sessionID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(service.privateKey)
	if err != nil {
		return "", fmt.Errorf("sec: sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature, algorithm, issuer and expiry, then returns
// the claims. It does not consult the session store.
func (service *TokenService) ParseToken(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	_, err := service.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return service.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	if claims.UserID == "" || claims.SessionID == "" {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}
