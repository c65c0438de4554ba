package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/supportly/backend/internal/services"
)

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
	tokenKey  contextKey = "token"
)

// TokenAuthority validates access tokens and knows which were logged out.
type TokenAuthority interface {
	ParseToken(token string) (*services.Claims, error)
	IsRevoked(ctx context.Context, token string) bool
}

// Auth requires a valid Bearer token belonging to an active account. The
// role placed on the context is read from storage, not from the token.
func Auth(tokens TokenAuthority, accounts services.AccountLookup, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				services.SendErrorResponse(w, "Authorization header required", http.StatusUnauthorized, nil)
				return
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				services.SendErrorResponse(w, "Invalid authorization header format", http.StatusUnauthorized, nil)
				return
			}
			token := parts[1]

			claims, err := tokens.ParseToken(token)
			if err != nil {
				log.Debug().Err(err).Str("request_id", RequestIDFromContext(r.Context())).Msg("Token rejected")
				services.SendErrorResponse(w, "Invalid or expired token", http.StatusUnauthorized, nil)
				return
			}
			if !services.IsValidAccountID(claims.UserID) {
				services.SendErrorResponse(w, "Invalid user ID format in token payload", http.StatusUnauthorized, nil)
				return
			}
			if tokens.IsRevoked(r.Context(), token) {
				services.SendErrorResponse(w, "Token has been revoked", http.StatusUnauthorized, nil)
				return
			}

			user, err := accounts.FindByID(r.Context(), claims.UserID)
			if err != nil && !errors.Is(err, services.ErrNotFound) {
				log.Error().Err(err).Str("user_id", claims.UserID).Msg("Account lookup failed during auth")
				services.SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
				return
			}
			if user == nil || !user.IsActive {
				services.SendErrorResponse(w, "User is inactive or not found", http.StatusUnauthorized, nil)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, user.ID)
			ctx = context.WithValue(ctx, roleKey, user.Role)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must run after Auth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			services.SendErrorResponse(w, "Insufficient permissions", http.StatusForbidden, nil)
		})
	}
}

func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

func RoleFromContext(ctx context.Context) string {
	v, _ := ctx.Value(roleKey).(string)
	return v
}

func TokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(tokenKey).(string)
	return v
}

