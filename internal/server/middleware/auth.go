// Package middleware provides HTTP middleware for authentication.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// accountIDKey is the context key for storing the authenticated account ID.
const accountIDKey ContextKey = "accountID"

// TokenValidator validates bearer tokens issued by the authentication service.
type TokenValidator interface {
	ValidateToken(tokenString string) (AccountIDGetter, error)
}

// AccountIDGetter extracts the account ID from token claims.
type AccountIDGetter interface {
	GetAccountID() string
}

// AuthMiddleware creates middleware that validates bearer tokens and adds the
// account ID to the request context.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// Handle case-insensitive "Bearer" prefix
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(parts[1])
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			accountID := strings.TrimSpace(claims.GetAccountID())
			if accountID == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := WithAccountID(r.Context(), accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithAccountID returns a context carrying accountID.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

// GetAccountID extracts the authenticated account ID from the request context.
func GetAccountID(r *http.Request) (string, error) {
	accountID, ok := r.Context().Value(accountIDKey).(string)
	if !ok || accountID == "" {
		return "", fmt.Errorf("account ID not found in request context")
	}
	return accountID, nil
}
