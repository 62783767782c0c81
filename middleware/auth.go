package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-tote-store/models"
	"go-tote-store/utils"
)

// Key type for context
type contextKey string

const (
	UserContextKey    = contextKey("user")
	SessionContextKey = contextKey("session")
)

// AuthMiddleware attaches the JWT claims of the caller to the context.
// Requests without an Authorization header continue as guests; a header that
// is present but malformed or invalid is rejected.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.WriteStatus(w, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		claims, err := utils.ParseJWT(parts[1])
		if err != nil {
			utils.WriteStatus(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects guests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ClaimsFrom(r.Context()) == nil {
			utils.WriteStatus(w, http.StatusUnauthorized, "Authorization header missing")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminMiddleware ensures that the user has admin privileges
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFrom(r.Context())
		if claims == nil || claims.Role != models.RoleAdmin {
			utils.WriteStatus(w, http.StatusForbidden, "Forbidden: Admins only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func ClaimsFrom(ctx context.Context) *utils.Claims {
	claims, _ := ctx.Value(UserContextKey).(*utils.Claims)
	return claims
}

// CustomerFrom returns the signed-in customer, or nil for a guest.
func CustomerFrom(ctx context.Context) *models.Customer {
	claims := ClaimsFrom(ctx)
	if claims == nil {
		return nil
	}
	return &models.Customer{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}
}
