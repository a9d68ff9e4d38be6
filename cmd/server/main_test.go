package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/squiirlabs/marketplace/internal/accounts"
	"github.com/squiirlabs/marketplace/internal/auth"
	"github.com/squiirlabs/marketplace/internal/cart"
	"github.com/squiirlabs/marketplace/internal/catalog"
	"github.com/squiirlabs/marketplace/internal/checkout"
	"github.com/squiirlabs/marketplace/internal/contacts"
	"github.com/squiirlabs/marketplace/internal/orders"
)

// testMux builds the real route table with inert handlers. The tests only
// look at which pattern a request resolves to, so none of them are invoked.
func testMux() *http.ServeMux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenService("test-secret", "marketplace")

	return newMux(serverHandlers{
		accounts: accounts.NewHandler(nil, tokens, nil, nil, "http://localhost:8080", logger),
		catalog:  catalog.NewHandler(nil, nil, logger),
		cart:     cart.NewHandler(nil, nil, nil, logger),
		checkout: checkout.NewHandler(nil, logger),
		orders:   orders.NewHandler(nil, nil, logger),
		contacts: contacts.NewHandler(nil, nil, nil, logger),
		authn:    auth.NewMiddleware(tokens),
		metrics:  http.NotFoundHandler(),
	})
}

func TestRouteTable(t *testing.T) {
	mux := testMux()

	cases := []struct {
		method string
		target string
		want   string
	}{
		{http.MethodPost, "/register", "POST /register"},
		{http.MethodGet, "/verify-email", "GET /verify-email"},
		{http.MethodPost, "/login", "POST /login"},
		{http.MethodGet, "/cart", "GET /cart"},
		{http.MethodPost, "/cart", "POST /cart"},
		{http.MethodDelete, "/cart/prod-1", "DELETE /cart/{productId}"},
		{http.MethodPost, "/checkout", "POST /checkout"},
		{http.MethodGet, "/seller-orders", "GET /seller-orders"},
		{http.MethodPost, "/contact", "POST /contact"},
	}

	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, nil)
			_, pattern := mux.Handler(req)
			if pattern != tc.want {
				t.Errorf("%s %s resolved to %q, want %q", tc.method, tc.target, pattern, tc.want)
			}
		})
	}
}

func TestRouteTableRejectsRetiredPaths(t *testing.T) {
	mux := testMux()

	cases := []struct {
		method string
		target string
	}{
		{http.MethodDelete, "/cart/items/prod-1"},
		{http.MethodGet, "/auth/verify"},
		{http.MethodPost, "/auth/register"},
		{http.MethodPost, "/auth/login"},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.target, nil)
		if _, pattern := mux.Handler(req); pattern != "" {
			t.Errorf("%s %s resolved to %q, want no route", tc.method, tc.target, pattern)
		}
	}
}
