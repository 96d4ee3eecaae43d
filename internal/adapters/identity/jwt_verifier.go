package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/zatekoja/medifind/internal/domain/providers"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
)

// Claims are the identity provider's token claims. The subject is the user id.
type Claims struct {
	Phone string `json:"phone_number,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HMAC-signed identity tokens
type JWTVerifier struct {
	secret []byte
	issuer string
}

// NewJWTVerifier creates a verifier for tokens signed with secret. When
// issuer is set, tokens must carry it. An empty secret rejects every token.
func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}
}

var _ providers.IdentityVerifier = (*JWTVerifier)(nil)

// Verify checks the signature, expiry and issuer of an identity token
func (v *JWTVerifier) Verify(_ context.Context, token string) (*providers.Identity, error) {
	if len(v.secret) == 0 {
		return nil, apperrors.NewUnauthorizedError("identity verification is not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.NewUnauthorizedError("identity token is required")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperrors.NewUnauthorizedError("invalid identity token")
	}

	if claims.ExpiresAt == nil {
		return nil, apperrors.NewUnauthorizedError("identity token has no expiry")
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return nil, apperrors.NewUnauthorizedError("identity token issuer mismatch")
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return nil, apperrors.NewUnauthorizedError("identity token has no subject")
	}

	return &providers.Identity{UserID: subject, Phone: strings.TrimSpace(claims.Phone)}, nil
}
