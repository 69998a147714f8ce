package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Signer is our interface for anything that can sign session tokens.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
	Validate() error
}

// Verifier checks a presented token and recovers its claims. Verification
// must fail closed on any tampering.
type Verifier interface {
	Verify(raw string) (Claims, error)
}

// HS256 signs and verifies session tokens with a single shared secret.
// One service both mints and checks these tokens, so a symmetric scheme
// is enough; rotating the secret invalidates every outstanding session.
type HS256 struct {
	secret []byte
}

// NewHS256 wraps a shared secret as a Signer+Verifier pair.
func NewHS256(secret []byte) *HS256 {
	return &HS256{secret: secret}
}

func (s *HS256) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify parses and verifies a raw token. The accepted methods are pinned
// to HS256 so an attacker cannot downgrade to "none" or confuse key types.
func (s *HS256) Verify(raw string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// Validate does a quick sanity check to make sure we actually have a secret.
func (s *HS256) Validate() error {
	if len(s.secret) < 32 {
		return errors.New("jwtx: HS256 secret shorter than 32 bytes")
	}
	return nil
}
