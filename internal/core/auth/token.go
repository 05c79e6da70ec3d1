package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/aceconsult/cmsapi/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrInvalidToken is returned for malformed, expired or forged tokens.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrWeakSecret is returned when the signing secret is too short.
	ErrWeakSecret = errors.New("token secret must be at least 32 bytes")
)

// MinSecretLength is the minimum accepted HMAC secret length.
const MinSecretLength = 32

// =============================================================================
// Claims
// =============================================================================

// Claims is the JWT payload issued to the admin.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// =============================================================================
// Token Issuer
// =============================================================================

// Issuer signs and verifies admin tokens with HS256.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewIssuer creates a token issuer. strict rejects secrets shorter than
// MinSecretLength.
func NewIssuer(secret string, ttl time.Duration, issuer string, strict bool) (*Issuer, error) {
	if secret == "" || (strict && len(secret) < MinSecretLength) {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, issuer: issuer}, nil
}

// Issue returns a signed token for admin, valid from now for the issuer's TTL.
func (i *Issuer) Issue(admin *domain.Admin, now time.Time) (string, error) {
	claims := Claims{
		Email: admin.Email,
		Name:  admin.Name,
		Role:  admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token at time now and returns the auth context it carries.
func (i *Issuer) Parse(tokenString string, now time.Time) (Context, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		return Context{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Context{}, ErrInvalidToken
	}

	return Context{
		AdminID:       claims.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		Role:          claims.Role,
		Authenticated: true,
	}, nil
}
