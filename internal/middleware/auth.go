package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xelth-com/tradetrack/internal/utils"
)

type contextKey string

const ActorContextKey contextKey = "actor"

func deny(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// bearer extracts the token from the Authorization header or, for
// websocket upgrades, the token query parameter.
func bearer(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if t := r.URL.Query().Get("token"); t != "" {
			return t, true
		}
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// Auth verifies JWT tokens and stores the caller in the request context
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearer(r)
			if !ok {
				deny(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			claims, err := utils.ValidateToken(tokenString, secret)
			if err != nil {
				deny(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			actor, err := utils.ActorFromClaims(claims)
			if err != nil {
				deny(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := WithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithActor returns a context carrying the caller.
func WithActor(ctx context.Context, a models.Actor) context.Context {
	return context.WithValue(ctx, ActorContextKey, a)
}

// ActorFrom returns the caller stored by Auth.
func ActorFrom(ctx context.Context) (models.Actor, bool) {
	a, ok := ctx.Value(ActorContextKey).(models.Actor)
	return a, ok
}

// RequireRole rejects callers whose role is not listed
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, ok := ActorFrom(r.Context())
			if !ok {
				deny(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			for _, role := range roles {
				if a.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			deny(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}
