package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/squiirlabs/marketplace/internal/api"
)

// Identity is the verified caller injected into the request context. The
// same account can act as buyer or seller depending on the endpoint.
type Identity struct {
	UserID string
	Name   string
	Email  string
}

type contextKey struct{}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

type Middleware struct {
	tokens *TokenService
}

func NewMiddleware(tokens *TokenService) *Middleware {
	return &Middleware{tokens: tokens}
}

// Require verifies the bearer token and injects the identity, rejecting the
// request with 401 otherwise.
func (m *Middleware) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			api.WriteError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := m.tokens.Verify(strings.TrimPrefix(header, "Bearer "), PurposeAccess)
		if err != nil {
			api.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		identity := Identity{
			UserID: claims.UserID,
			Name:   claims.Name,
			Email:  claims.Email,
		}
		next(w, r.WithContext(WithIdentity(r.Context(), identity)))
	}
}
