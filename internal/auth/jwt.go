package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired is returned for well-signed tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidToken covers every other verification failure.
	ErrInvalidToken = errors.New("invalid token")

	errEmptySecret = errors.New("jwt secret must not be empty")
)

// AppMetadata carries provider-managed attributes such as the application role.
type AppMetadata struct {
	Role string `json:"role,omitempty"`
}

// Claims is the access token payload issued by the hosted auth provider.
type Claims struct {
	jwt.RegisteredClaims
	Email       string      `json:"email"`
	Role        string      `json:"role"`
	AppMetadata AppMetadata `json:"app_metadata"`
}

// AppRole returns the application role. The provider's own "role" claim
// (usually "authenticated") only counts when no application role is set.
func (c *Claims) AppRole() string {
	if c.AppMetadata.Role != "" {
		return c.AppMetadata.Role
	}
	return c.Role
}

// JWTManager verifies HMAC signed access tokens and can mint them for local development.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTManager constructs a manager with the given secret and token lifetime.
func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTManager{secret: []byte(secret), ttl: ttl}
}

// GenerateToken creates an access token shaped like the provider's, with the
// application role stored in app_metadata.
func (m *JWTManager) GenerateToken(subject, email, role string) (string, error) {
	if len(m.secret) == 0 {
		return "", errEmptySecret
	}

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email:       email,
		Role:        "authenticated",
		AppMetadata: AppMetadata{Role: role},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", err
	}

	return signed, nil
}

// ParseToken verifies an HS256 token and requires a subject, since every
// provider session is bound to a user id.
func (m *JWTManager) ParseToken(token string) (*Claims, error) {
	if len(m.secret) == 0 {
		return nil, errEmptySecret
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	case !parsed.Valid:
		return nil, ErrInvalidToken
	case claims.Subject == "":
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
