package auth

import (
	"context"
	"testing"
	"time"

	"github.com/aceconsult/cmsapi/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func testAdmin() *domain.Admin {
	return domain.NewAdmin("admin@example.com", "hash", "Site Admin", testNow)
}

// =============================================================================
// BearerToken Tests
// =============================================================================

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing", "", ""},
		{"bearer", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"lowercase scheme", "bearer abc", "abc"},
		{"basic scheme", "Basic dXNlcjpwYXNz", ""},
		{"no token", "Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := MapHeaderGetter{"Authorization": tt.header}
			assert.Equal(t, tt.want, BearerToken(headers))
		})
	}
}

// =============================================================================
// Context Storage Tests
// =============================================================================

func TestWithContext_RoundTrip(t *testing.T) {
	authCtx := Context{AdminID: "a1", Email: "admin@example.com", Authenticated: true}

	ctx := WithContext(context.Background(), authCtx)

	assert.Equal(t, authCtx, FromContext(ctx))
}

func TestFromContext_Missing(t *testing.T) {
	assert.False(t, FromContext(context.Background()).Authenticated)
}

// =============================================================================
// Token Tests
// =============================================================================

func TestNewIssuer_RejectsWeakSecret(t *testing.T) {
	_, err := NewIssuer("short", time.Hour, "cmsapi", true)
	assert.ErrorIs(t, err, ErrWeakSecret)

	_, err = NewIssuer("", time.Hour, "cmsapi", false)
	assert.ErrorIs(t, err, ErrWeakSecret)

	_, err = NewIssuer("short", time.Hour, "cmsapi", false)
	assert.NoError(t, err)
}

func TestIssuer_IssueAndParse(t *testing.T) {
	issuer, err := NewIssuer(testSecret, time.Hour, "cmsapi", true)
	require.NoError(t, err)
	admin := testAdmin()

	token, err := issuer.Issue(admin, testNow)
	require.NoError(t, err)

	ctx, err := issuer.Parse(token, testNow.Add(30*time.Minute))
	require.NoError(t, err)
	assert.True(t, ctx.Authenticated)
	assert.Equal(t, admin.ID, ctx.AdminID)
	assert.Equal(t, "admin@example.com", ctx.Email)
	assert.Equal(t, domain.RoleAdmin, ctx.Role)
}

func TestIssuer_Parse_Expired(t *testing.T) {
	issuer, err := NewIssuer(testSecret, time.Hour, "cmsapi", true)
	require.NoError(t, err)

	token, err := issuer.Issue(testAdmin(), testNow)
	require.NoError(t, err)

	_, err = issuer.Parse(token, testNow.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_Parse_WrongSecret(t *testing.T) {
	issuer, _ := NewIssuer(testSecret, time.Hour, "cmsapi", true)
	other, _ := NewIssuer("ffffffffffffffffffffffffffffffff", time.Hour, "cmsapi", true)

	token, err := other.Issue(testAdmin(), testNow)
	require.NoError(t, err)

	_, err = issuer.Parse(token, testNow)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_Parse_RejectsNoneAlgorithm(t *testing.T) {
	issuer, _ := NewIssuer(testSecret, time.Hour, "cmsapi", true)

	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "a1",
		Issuer:    "cmsapi",
		ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
	}}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Parse(unsigned, testNow)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_Parse_Garbage(t *testing.T) {
	issuer, _ := NewIssuer(testSecret, time.Hour, "cmsapi", true)

	_, err := issuer.Parse("not-a-token", testNow)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// =============================================================================
// Password Tests
// =============================================================================

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, CheckPassword(hash, "correct horse"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong horse"), ErrPasswordMismatch)
}
