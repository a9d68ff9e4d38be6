package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/squiirlabs/marketplace/internal/domain"
)

func TestMiddleware_Require(t *testing.T) {
	tokens := NewTokenService("test-secret", "marketplace")
	mw := NewMiddleware(tokens)

	next := func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		if !ok {
			t.Error("expected identity in context")
		}
		if id.UserID != "user-1" {
			t.Errorf("expected user-1, got %s", id.UserID)
		}
		w.WriteHeader(http.StatusOK)
	}

	t.Run("passes verified identity through", func(t *testing.T) {
		token, err := tokens.IssueAccess(domain.User{ID: "user-1", Name: "Ada"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		mw.Require(next)(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("rejects missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		rec := httptest.NewRecorder()

		mw.Require(next)(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("rejects malformed token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rec := httptest.NewRecorder()

		mw.Require(next)(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})
}
