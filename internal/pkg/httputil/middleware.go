package httputil

import (
	"context"
	"net/http"

	"github.com/barkbase/opsdash/internal/domain"
	"golang.org/x/time/rate"
)

// CORSMiddleware creates CORS middleware that handles preflight requests
// and adds appropriate CORS headers to responses.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	originsSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originsSet[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if originsSet[origin] || originsSet["*"] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type contextKey string

// AdminKey stores the authenticated admin in the request context.
const AdminKey contextKey = "admin"

// TokenVerifier verifies an admin bearer token and returns its identity.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*domain.AdminUser, error)
}

// AuthMiddleware creates authentication middleware for admin routes.
// A missing or invalid credential answers 403: the admin console treats
// authentication and authorization failures uniformly.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				Error(w, http.StatusForbidden, "missing or malformed authorization header")
				return
			}

			admin, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				Error(w, http.StatusForbidden, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), AdminKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIncidentWrite gates mutating incident routes on the admin's
// role. Must run after AuthMiddleware.
func RequireIncidentWrite(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin := GetAdmin(r.Context())
		if admin == nil {
			Error(w, http.StatusForbidden, "missing identity")
			return
		}

		if !admin.Role.CanWriteIncidents() {
			Error(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimitMiddleware applies a shared token bucket to the wrapped
// routes. Used on the unauthenticated status endpoints.
func RateLimitMiddleware(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				Error(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetAdmin extracts the authenticated admin from context.
// Returns nil when the request did not pass AuthMiddleware.
func GetAdmin(ctx context.Context) *domain.AdminUser {
	if admin, ok := ctx.Value(AdminKey).(*domain.AdminUser); ok {
		return admin
	}
	return nil
}

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) {
		return "", false
	}
	if header[:len(prefix)] != prefix && header[:len(prefix)] != "bearer " {
		return "", false
	}
	return header[len(prefix):], true
}
