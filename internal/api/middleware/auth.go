package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/miwanzo/internal/auth"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
	SessionIDKey contextKey = "session_id"
)

// CallerResolver turns a bearer token into the caller behind it.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) (*auth.Caller, error)
}

func Auth(resolver CallerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			caller, err := resolver.ResolveCaller(r.Context(), token)
			if err != nil {
				if msg, ok := unauthorizedMessage(err); ok {
					writeError(w, http.StatusUnauthorized, msg)
					return
				}
				slog.ErrorContext(r.Context(), "resolving caller failed", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, UserIDKey, caller.UserID)
			ctx = context.WithValue(ctx, UserEmailKey, caller.Email)
			ctx = context.WithValue(ctx, SessionIDKey, caller.SessionID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// tokenFromRequest checks the Authorization header first, then X-Auth-Token.
func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return strings.TrimSpace(r.Header.Get("X-Auth-Token"))
}

// unauthorizedMessage reports false for errors that are not token rejections.
func unauthorizedMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token has expired", true
	case errors.Is(err, auth.ErrSessionRevoked):
		return "Session is no longer valid", true
	case errors.Is(err, auth.ErrInvalidToken):
		return "Invalid token", true
	default:
		return "", false
	}
}

func GetUserID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}

func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(SessionIDKey).(string); ok {
		return id
	}
	return ""
}
