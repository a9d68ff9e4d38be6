package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/squiirlabs/marketplace/internal/auth"
	"github.com/squiirlabs/marketplace/internal/domain"
	"github.com/squiirlabs/marketplace/internal/storage"
)

type fakeUserStore struct {
	users     map[string]*domain.User
	createErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*domain.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) MarkVerified(_ context.Context, id string) error {
	u, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Verified = true
	return nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id string, update ProfileUpdate) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if update.Name != "" {
		u.Name = update.Name
	}
	if update.Address != "" {
		u.Address = update.Address
	}
	if update.Phone != "" {
		u.Phone = update.Phone
	}
	if update.ImageURL != "" {
		u.ImageURL = update.ImageURL
	}
	copied := *u
	return &copied, nil
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to, subject, body string
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func newTestHandler(store UserStore, mailer EmailSender) (*Handler, *auth.TokenService) {
	tokens := auth.NewTokenService("test-secret", "marketplace")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(store, tokens, mailer, storage.NewStub(), "http://localhost:8080", logger), tokens
}

func TestHandler_HandleRegister(t *testing.T) {
	t.Run("creates user and sends verification email", func(t *testing.T) {
		store := newFakeUserStore()
		mailer := &fakeMailer{}
		handler, _ := newTestHandler(store, mailer)

		body := `{"name":"Ada","email":"ada@example.com","password":"long-enough","address":"1 Main St","phone":"5551234567"}`
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleRegister(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(mailer.sent) != 1 {
			t.Fatalf("expected 1 email, got %d", len(mailer.sent))
		}
		if mailer.sent[0].to != "ada@example.com" {
			t.Errorf("unexpected recipient: %s", mailer.sent[0].to)
		}
		if !strings.Contains(mailer.sent[0].body, "/verify-email?token=") {
			t.Errorf("expected verification link in body: %s", mailer.sent[0].body)
		}

		user, _ := store.GetByEmail(context.Background(), "ada@example.com")
		if user == nil {
			t.Fatal("expected user to be created")
		}
		if user.PasswordHash == "long-enough" {
			t.Error("password must not be stored in plain text")
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		store := newFakeUserStore()
		_ = store.Create(context.Background(), &domain.User{Email: "ada@example.com"})
		handler, _ := newTestHandler(store, &fakeMailer{})

		body := `{"name":"Ada","email":"ada@example.com","password":"long-enough","address":"1 Main St","phone":"5551234567"}`
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleRegister(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("rejects invalid body", func(t *testing.T) {
		handler, _ := newTestHandler(newFakeUserStore(), &fakeMailer{})

		body := `{"name":"Ada","email":"not-an-email","password":"short"}`
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleRegister(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("registration survives a failing mailer", func(t *testing.T) {
		store := newFakeUserStore()
		handler, _ := newTestHandler(store, &fakeMailer{err: io.ErrClosedPipe})

		body := `{"name":"Ada","email":"ada@example.com","password":"long-enough","address":"1 Main St","phone":"5551234567"}`
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleRegister(rec, req)

		if rec.Code != http.StatusCreated {
			t.Errorf("expected status 201, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleLogin(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)

	seed := func(verified bool) *fakeUserStore {
		store := newFakeUserStore()
		store.users["user-1"] = &domain.User{
			ID:           "user-1",
			Name:         "Ada",
			Email:        "ada@example.com",
			PasswordHash: string(hash),
			Verified:     verified,
		}
		return store
	}

	t.Run("returns a usable access token", func(t *testing.T) {
		handler, tokens := newTestHandler(seed(true), &fakeMailer{})

		body := `{"email":"ada@example.com","password":"correct-horse"}`
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleLogin(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		claims, err := tokens.Verify(resp.Token, auth.PurposeAccess)
		if err != nil {
			t.Fatalf("expected valid access token: %v", err)
		}
		if claims.UserID != "user-1" {
			t.Errorf("expected user-1, got %s", claims.UserID)
		}
	})

	t.Run("rejects unverified account", func(t *testing.T) {
		handler, _ := newTestHandler(seed(false), &fakeMailer{})

		body := `{"email":"ada@example.com","password":"correct-horse"}`
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleLogin(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		handler, _ := newTestHandler(seed(true), &fakeMailer{})

		body := `{"email":"ada@example.com","password":"wrong"}`
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleLogin(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleVerifyEmail(t *testing.T) {
	store := newFakeUserStore()
	store.users["user-1"] = &domain.User{ID: "user-1", Email: "ada@example.com"}
	handler, tokens := newTestHandler(store, &fakeMailer{})

	token, err := tokens.IssueVerification("user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/verify-email?token="+token, nil)
	rec := httptest.NewRecorder()

	handler.HandleVerifyEmail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !store.users["user-1"].Verified {
		t.Error("expected user to be verified")
	}
}

func TestHandler_HandleUpdateProfile(t *testing.T) {
	store := newFakeUserStore()
	store.users["user-1"] = &domain.User{ID: "user-1", Name: "Ada", Address: "1 Main St"}
	handler, _ := newTestHandler(store, &fakeMailer{})

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	_ = form.WriteField("address", "2 Side St")
	part, _ := form.CreateFormFile("image", "me.png")
	_, _ = part.Write([]byte("png-bytes"))
	_ = form.Close()

	req := httptest.NewRequest(http.MethodPut, "/profile", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: "user-1"}))
	rec := httptest.NewRecorder()

	handler.HandleUpdateProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	updated := store.users["user-1"]
	if updated.Address != "2 Side St" {
		t.Errorf("expected address update, got %s", updated.Address)
	}
	if updated.Name != "Ada" {
		t.Errorf("expected untouched name, got %s", updated.Name)
	}
	if !strings.HasPrefix(updated.ImageURL, "stub://profiles/") {
		t.Errorf("expected stored image url, got %s", updated.ImageURL)
	}
}
