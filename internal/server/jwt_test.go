package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonathan/jobfit/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func setupTestJWTService(_ *testing.T, issuer string) *JWTService {
	return NewJWTService(&config.JWTConfig{Secret: testSecret, Issuer: issuer})
}

// signToken issues a token the way the authentication service would.
func signToken(t *testing.T, method jwt.SigningMethod, key any, claims *Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(accountID string) *Claims {
	now := time.Now()
	return &Claims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestJWTService_ValidateToken(t *testing.T) {
	service := setupTestJWTService(t, "")

	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("acct-1"))
	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", claims.GetAccountID())
}

func TestJWTService_SubjectFallback(t *testing.T) {
	service := setupTestJWTService(t, "")

	c := validClaims("")
	c.Subject = "acct-sub"
	claims, err := service.ValidateToken(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c))
	require.NoError(t, err)
	assert.Equal(t, "acct-sub", claims.GetAccountID())
}

func TestJWTService_Rejects(t *testing.T) {
	service := setupTestJWTService(t, "auth.example.com")

	expired := validClaims("acct-1")
	expired.Issuer = "auth.example.com"
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := validClaims("acct-1")
	wrongIssuer.Issuer = "someone-else"

	noAccount := validClaims("")
	noAccount.Issuer = "auth.example.com"

	good := validClaims("acct-1")
	good.Issuer = "auth.example.com"

	tests := []struct {
		name    string
		token   string
		wantErr string
	}{
		{name: "empty", token: "", wantErr: "empty"},
		{name: "malformed", token: "not.a.jwt", wantErr: "malformed"},
		{name: "wrong secret", token: signToken(t, jwt.SigningMethodHS256, []byte("another-secret-another-secret-xx"), good), wantErr: "signature"},
		{name: "expired", token: signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired), wantErr: "expired"},
		{name: "wrong issuer", token: signToken(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer), wantErr: "parse"},
		{name: "no account", token: signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noAccount), wantErr: "no account"},
		{name: "none algorithm", token: signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, good), wantErr: "signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ValidateToken(tt.token)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestJWTService_AsTokenValidator(t *testing.T) {
	service := setupTestJWTService(t, "")
	validator := service.AsTokenValidator()

	got, err := validator.ValidateToken(signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims("acct-9")))
	require.NoError(t, err)
	assert.Equal(t, "acct-9", got.GetAccountID())

	_, err = validator.ValidateToken("garbage")
	assert.Error(t, err)
}
