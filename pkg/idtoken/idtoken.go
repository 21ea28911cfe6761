// Package idtoken verifies access tokens issued by the external identity
// provider. The application never mints tokens; it only checks the signature
// and standard claims, then trusts the subject as the external user id.
package idtoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/umojalearning/umoja-backend/config"
)

var (
	ErrMissingSecret = errors.New("identity secret key is not configured")
	ErrInvalidToken  = errors.New("invalid identity token")
)

// Claims is the app-facing token payload.
type Claims struct {
	// ExternalID is the identity provider's stable user identifier (sub).
	ExternalID string
	Email      string

	Issuer    string
	Audience  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type providerClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks identity-provider tokens against a shared signing secret.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewVerifier creates a Verifier from central config.
// Returns ErrMissingSecret when no secret key is configured; routes that
// require authentication must treat this as a configuration error.
func NewVerifier(cfg *config.Config) (*Verifier, error) {
	if cfg.Identity.SecretKey == "" {
		return nil, ErrMissingSecret
	}
	return &Verifier{
		secret:   []byte(cfg.Identity.SecretKey),
		issuer:   cfg.Identity.Issuer,
		audience: cfg.Identity.Audience,
	}, nil
}

// Verify parses and validates a raw bearer token, returning its claims.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	var pc providerClaims
	tok, err := jwt.ParseWithClaims(raw, &pc, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid || pc.Subject == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		ExternalID: pc.Subject,
		Email:      pc.Email,
		Issuer:     pc.Issuer,
	}
	if len(pc.Audience) > 0 {
		claims.Audience = pc.Audience[0]
	}
	if pc.IssuedAt != nil {
		claims.IssuedAt = pc.IssuedAt.Time
	}
	if pc.ExpiresAt != nil {
		claims.ExpiresAt = pc.ExpiresAt.Time
	}
	return claims, nil
}
