// Package middleware provides the HTTP middleware chain for the API server.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/musecraft/musecraft/internal/apperr"
	"github.com/musecraft/musecraft/internal/auth"
	"github.com/musecraft/musecraft/internal/httputil"
	"github.com/musecraft/musecraft/internal/logging"
)

type contextKey string

const userContextKey contextKey = "auth_user"

// TokenVerifier validates a bearer token into claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware authenticates requests carrying a bearer token.
type AuthMiddleware struct {
	verifier TokenVerifier
	logger   *logging.Logger
}

// NewAuthMiddleware creates the middleware.
func NewAuthMiddleware(verifier TokenVerifier, logger *logging.Logger) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, logger: logger}
}

// Require rejects requests without a valid token: 401 when the credential
// is absent, 403 when it fails verification.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.authenticate(r)
		if err != nil {
			m.logger.WithContext(r.Context()).Warn().Err(err).
				Str("path", r.URL.Path).Msg("authentication failed")
			httputil.WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// Optional attaches the identity when a valid token is present and lets
// anonymous requests through. A token that is present but invalid is still
// rejected.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, err := m.authenticate(r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

func (m *AuthMiddleware) authenticate(r *http.Request) (auth.User, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.User{}, apperr.Unauthenticated("Missing Authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return auth.User{}, apperr.Unauthenticated("Invalid Authorization header format")
	}

	claims, err := m.verifier.Verify(parts[1])
	if err != nil {
		return auth.User{}, err
	}
	return claims.User(), nil
}

func withUser(ctx context.Context, user auth.User) context.Context {
	ctx = context.WithValue(ctx, userContextKey, user)
	return logging.WithUserID(ctx, user.ID)
}

// GetUser extracts the authenticated user from the context.
func GetUser(ctx context.Context) (auth.User, bool) {
	user, ok := ctx.Value(userContextKey).(auth.User)
	return user, ok
}

// GetUserID extracts the authenticated user ID, or "".
func GetUserID(ctx context.Context) string {
	user, _ := GetUser(ctx)
	return user.ID
}
