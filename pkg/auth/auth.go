// Copyright (c) 2026, Verdant Labs.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package auth

import (
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/verdantlabs/plantgate/pkg/errors"
)

const bearerPrefix = "Bearer "

// Identity is the caller identity reconstructed from a verified credential.
// It is never persisted.
type Identity struct {
	Subject   string
	ExpiresAt time.Time
}

// Verifier validates bearer credentials against a shared HMAC secret.
// It is stateless and safe for concurrent use.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier creates a Verifier for the given shared secret. The now
// function may be nil, in which case time.Now is used.
func NewVerifier(secret string, now func() time.Time) *Verifier {
	if now == nil {
		now = time.Now
	}
	return &Verifier{secret: []byte(secret), now: now}
}

// VerifyRequest extracts the bearer credential from the Authorization header
// and verifies it.
func (v *Verifier) VerifyRequest(r *http.Request) (Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Identity{}, errors.New(errors.ErrCodeAuthMissing, "missing Authorization header")
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return Identity{}, errors.New(errors.ErrCodeAuthMissing, "Authorization header is not a Bearer credential")
	}
	return v.Verify(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
}

// Verify checks the credential's signature and expiry and returns the
// embedded identity.
func (v *Verifier) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, errors.New(errors.ErrCodeAuthMissing, "empty bearer credential")
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, mapJWTError(err)
	}

	id := Identity{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// Sign mints a credential for the given subject, valid for ttl. Used by the
// token CLI subcommand and by tests; token issuance is otherwise external.
func Sign(secret, subject string, ttl time.Duration, now func() time.Time) (string, error) {
	if now == nil {
		now = time.Now
	}
	issued := now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// mapJWTError translates jwt library errors into the gateway error taxonomy.
func mapJWTError(err error) error {
	switch {
	case stderrors.Is(err, jwt.ErrTokenExpired):
		return errors.Wrap(errors.ErrCodeAuthExpired, "credential is expired", err)
	case stderrors.Is(err, jwt.ErrTokenSignatureInvalid):
		return errors.Wrap(errors.ErrCodeAuthInvalid, "credential signature is invalid", err)
	case stderrors.Is(err, jwt.ErrTokenNotValidYet):
		return errors.Wrap(errors.ErrCodeAuthInvalid, "credential is not active yet", err)
	case stderrors.Is(err, jwt.ErrTokenMalformed):
		return errors.Wrap(errors.ErrCodeAuthInvalid, "credential is malformed", err)
	default:
		return errors.Wrap(errors.ErrCodeAuthInvalid, "credential verification failed", err)
	}
}
