package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/vendora/backend/internal/auth"
	"github.com/vendora/backend/internal/services"
	"go.uber.org/zap"
)

type contextKey string

const claimsKey contextKey = "claims"

// Authenticator verifies bearer tokens and rejects revoked sessions.
type Authenticator struct {
	tokens   *auth.TokenManager
	sessions auth.SessionStore
	logger   *zap.Logger
}

func NewAuthenticator(tokens *auth.TokenManager, sessions auth.SessionStore, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{tokens: tokens, sessions: sessions, logger: logger.Named("auth")}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Get token from Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			services.SendErrorResponse(w, "Authorization header required", http.StatusUnauthorized, nil)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			services.SendErrorResponse(w, "Invalid authorization header format", http.StatusUnauthorized, nil)
			return
		}

		claims, err := a.tokens.Parse(parts[1])
		if err != nil {
			a.logger.Debug("token rejected", zap.Error(err))
			services.SendErrorResponse(w, "Invalid token", http.StatusUnauthorized, nil)
			return
		}

		revoked, err := a.sessions.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			a.logger.Error("session lookup failed", zap.String("session_id", claims.ID), zap.Error(err))
			services.SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
			return
		}
		if revoked {
			services.SendErrorResponse(w, "Session has been logged out", http.StatusUnauthorized, nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the claims stored by Authenticator.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// RequireRole lets the request through only when the caller holds one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
				return
			}
			if !slices.Contains(roles, claims.Role) {
				services.SendErrorResponse(w, "Access to this resource is not allowed for role "+claims.Role, http.StatusForbidden, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
