package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/squiirlabs/marketplace/internal/domain"
)

type fakeSellerDirectory struct {
	sellers []domain.User
}

func (f *fakeSellerDirectory) GetByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	return f.sellers, nil
}

type captureMailer struct {
	mails   []sendRequest
	failFor string
}

func (c *captureMailer) Send(_ context.Context, to, subject, body string) error {
	if to == c.failFor {
		return errors.New("delivery failed")
	}
	c.mails = append(c.mails, sendRequest{To: to, Subject: subject, Body: body})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func placedEvent() domain.OrderPlacedEvent {
	return domain.OrderPlacedEvent{
		OrderID:         "order-1",
		BuyerID:         "buyer-1",
		BuyerName:       "Ann",
		Total:           3400,
		ShippingAddress: "1 Main St",
		Lines: []domain.OrderLine{
			{ProductID: "prod-s", ProductName: "Scarf", SellerID: "seller-s", Quantity: 2, Price: 1200},
			{ProductID: "prod-t", ProductName: "Teapot", SellerID: "seller-t", Quantity: 1, Price: 1000},
		},
		Timestamp: time.Now().UTC(),
	}
}

func TestHandle(t *testing.T) {
	t.Run("mails each seller their own lines", func(t *testing.T) {
		sellers := &fakeSellerDirectory{sellers: []domain.User{
			{ID: "seller-s", Name: "Sue", Email: "sue@example.com"},
			{ID: "seller-t", Name: "Tom", Email: "tom@example.com"},
		}}
		mailer := &captureMailer{}
		handler := NewHandler(sellers, mailer, testLogger())

		payload, _ := json.Marshal(placedEvent())
		if err := handler.Handle(context.Background(), payload); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(mailer.mails) != 2 {
			t.Fatalf("expected 2 mails, got %d", len(mailer.mails))
		}

		sue := mailer.mails[0]
		if sue.To != "sue@example.com" {
			t.Errorf("expected first mail to sue, got %s", sue.To)
		}
		if !strings.Contains(sue.Body, "2x Scarf") || strings.Contains(sue.Body, "Teapot") {
			t.Errorf("expected only sue's lines in her mail, got:\n%s", sue.Body)
		}
		if !strings.Contains(sue.Body, "Ann") || !strings.Contains(sue.Body, "1 Main St") {
			t.Errorf("expected buyer and address in mail, got:\n%s", sue.Body)
		}
	})

	t.Run("continues past a failed delivery", func(t *testing.T) {
		sellers := &fakeSellerDirectory{sellers: []domain.User{
			{ID: "seller-s", Name: "Sue", Email: "sue@example.com"},
			{ID: "seller-t", Name: "Tom", Email: "tom@example.com"},
		}}
		mailer := &captureMailer{failFor: "sue@example.com"}
		handler := NewHandler(sellers, mailer, testLogger())

		payload, _ := json.Marshal(placedEvent())
		if err := handler.Handle(context.Background(), payload); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}

		if len(mailer.mails) != 1 || mailer.mails[0].To != "tom@example.com" {
			t.Errorf("expected tom to still be mailed, got %+v", mailer.mails)
		}
	})

	t.Run("skips sellers whose account is gone", func(t *testing.T) {
		sellers := &fakeSellerDirectory{sellers: []domain.User{
			{ID: "seller-t", Name: "Tom", Email: "tom@example.com"},
		}}
		mailer := &captureMailer{}
		handler := NewHandler(sellers, mailer, testLogger())

		payload, _ := json.Marshal(placedEvent())
		if err := handler.Handle(context.Background(), payload); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(mailer.mails) != 1 || mailer.mails[0].To != "tom@example.com" {
			t.Errorf("expected only tom to be mailed, got %+v", mailer.mails)
		}
	})

	t.Run("rejects a malformed payload", func(t *testing.T) {
		handler := NewHandler(&fakeSellerDirectory{}, &captureMailer{}, testLogger())

		if err := handler.Handle(context.Background(), []byte("not json")); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestMailer(t *testing.T) {
	t.Run("posts to the delivery service", func(t *testing.T) {
		var got sendRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/send" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		mailer := NewMailer(srv.URL, srv.Client())
		if err := mailer.Send(context.Background(), "sue@example.com", "Hi", "Hello"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.To != "sue@example.com" || got.Subject != "Hi" || got.Body != "Hello" {
			t.Errorf("unexpected request: %+v", got)
		}
	})

	t.Run("surfaces non-200 responses", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		mailer := NewMailer(srv.URL, srv.Client())
		if err := mailer.Send(context.Background(), "sue@example.com", "Hi", "Hello"); err == nil {
			t.Error("expected an error")
		}
	})
}
