package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/ranktracker/internal/api/apierr"
	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/services/auth"
	"github.com/mcoot/ranktracker/internal/services/user"
)

type contextKey string

const (
	principalContextKey contextKey = "principal"
	userContextKey      contextKey = "user"
)

// Auth creates authentication middleware. It verifies the bearer token,
// records the user it names, and attaches the principal to the request context.
func Auth(authService *auth.Service, users *user.Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			identity, err := authService.Verify(token)
			if err != nil {
				logger.Debug("token rejected", slog.String("error", err.Error()))
				apierr.WriteError(w, err)
				return
			}

			u, err := users.Record(r.Context(), identity.Principal, identity.DisplayName)
			if err != nil {
				logger.Error("failed to record user",
					slog.String("user_id", string(identity.Principal.ID)),
					slog.String("error", err.Error()),
				)
				apierr.WriteError(w, apierr.NewInternalError())
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, principalContextKey, identity.Principal)
			ctx = context.WithValue(ctx, userContextKey, u)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// GetPrincipal returns the authenticated principal from the request context.
// The zero Principal is returned when none is present.
func GetPrincipal(ctx context.Context) model.Principal {
	p, _ := ctx.Value(principalContextKey).(model.Principal)
	return p
}

// GetUser returns the recorded user for the authenticated principal
func GetUser(ctx context.Context) *model.User {
	u, _ := ctx.Value(userContextKey).(*model.User)
	return u
}
