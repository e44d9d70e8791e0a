package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/incline-app/incline-backend/internal/auth"
	"github.com/incline-app/incline-backend/internal/web"
)

// TokenVerifier decodes a bearer token into the caller identity.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached by Authenticate.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(auth.Identity)
	return id, ok
}

// Authenticate validates the Authorization bearer token and injects the
// caller identity into the request context.
func Authenticate(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				web.WriteMessage(w, http.StatusUnauthorized, "no token, authorization denied")
				return
			}

			id, err := verifier.Verify(token)
			if err != nil {
				logger.Debug("token rejected", zap.String("path", r.URL.Path), zap.Error(err))
				if errors.Is(err, auth.ErrExpiredToken) {
					web.WriteMessage(w, http.StatusUnauthorized, "token has expired")
					return
				}
				web.WriteMessage(w, http.StatusUnauthorized, "token is not valid")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// Permit lets the request through only when the authenticated role is one
// of roles. It must run after Authenticate.
func Permit(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				web.WriteMessage(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			web.WriteMessage(w, http.StatusForbidden, "access denied")
		})
	}
}

// RequireServiceToken guards operator-only routes with a static token sent
// as "Authorization: Bearer <token>". An empty expected token closes the route.
func RequireServiceToken(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := bearerToken(r.Header.Get("Authorization"))
			if expected == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
				web.WriteMessage(w, http.StatusForbidden, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
