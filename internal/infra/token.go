// README: Admin token verifier used by the auth middleware for administrative routes.
package infra

import (
	"context"
	"crypto/subtle"
	"errors"
)

var ErrInvalidToken = errors.New("invalid admin token")

// AdminToken holds the verified token data used by downstream middleware.
type AdminToken struct {
	Subject string
}

// TokenVerifier verifies a raw bearer token string and returns token data.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*AdminToken, error)
}

type staticVerifier struct {
	secret []byte
}

// NewStaticVerifier accepts exactly one shared secret. An empty secret yields nil,
// which the router treats as "admin routes are open".
func NewStaticVerifier(secret string) TokenVerifier {
	if secret == "" {
		return nil
	}
	return &staticVerifier{secret: []byte(secret)}
}

func (v *staticVerifier) VerifyToken(_ context.Context, token string) (*AdminToken, error) {
	if subtle.ConstantTimeCompare([]byte(token), v.secret) != 1 {
		return nil, ErrInvalidToken
	}
	return &AdminToken{Subject: "admin"}, nil
}
