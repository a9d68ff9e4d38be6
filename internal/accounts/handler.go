package accounts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/squiirlabs/marketplace/internal/api"
	"github.com/squiirlabs/marketplace/internal/auth"
	"github.com/squiirlabs/marketplace/internal/domain"
	"github.com/squiirlabs/marketplace/internal/storage"
)

const maxImageBytes = 8 << 20

type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	MarkVerified(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*domain.User, error)
}

// EmailSender is the external email-delivery collaborator.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Handler struct {
	store   UserStore
	tokens  *auth.TokenService
	mailer  EmailSender
	blobs   storage.BlobStore
	baseURL string
	logger  *slog.Logger
}

func NewHandler(store UserStore, tokens *auth.TokenService, mailer EmailSender, blobs storage.BlobStore, baseURL string, logger *slog.Logger) *Handler {
	return &Handler{
		store:   store,
		tokens:  tokens,
		mailer:  mailer,
		blobs:   blobs,
		baseURL: baseURL,
		logger:  logger,
	}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Address  string `json:"address" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"required,min=10,max=15"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := api.Validate(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := h.store.GetByEmail(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("failed to look up user", "error", err)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing != nil {
		api.WriteError(w, http.StatusBadRequest, "user already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Address:      req.Address,
		Phone:        req.Phone,
	}
	if err := h.store.Create(r.Context(), user); err != nil {
		h.logger.Error("failed to create user", "error", err)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.sendVerificationEmail(r.Context(), user)

	h.logger.Info("user registered", "user_id", user.ID)
	api.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "registration successful, please verify your email",
	})
}

func (h *Handler) sendVerificationEmail(ctx context.Context, user *domain.User) {
	if h.mailer == nil {
		return
	}

	token, err := h.tokens.IssueVerification(user.ID)
	if err != nil {
		h.logger.Error("failed to issue verification token", "error", err, "user_id", user.ID)
		return
	}

	body := fmt.Sprintf(
		"Welcome, %s!\n\nPlease verify your email by visiting:\n%s/verify-email?token=%s\n\nIf you did not create an account, ignore this email.",
		user.Name, h.baseURL, token,
	)
	if err := h.mailer.Send(ctx, user.Email, "Verify your email", body); err != nil {
		h.logger.Error("failed to send verification email", "error", err, "user_id", user.ID)
	}
}

func (h *Handler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		api.WriteError(w, http.StatusBadRequest, "verification token is required")
		return
	}

	claims, err := h.tokens.Verify(token, auth.PurposeVerify)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid or expired verification token")
		return
	}

	if err := h.store.MarkVerified(r.Context(), claims.UserID); err != nil {
		if status, ok := api.ClientStatus(err); ok {
			api.WriteError(w, status, "user not found")
			return
		}
		h.logger.Error("failed to mark user verified", "error", err, "user_id", claims.UserID)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("email verified", "user_id", claims.UserID)
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "email verified successfully"})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := api.Validate(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.store.GetByEmail(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("failed to look up user", "error", err)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		api.WriteError(w, http.StatusBadRequest, "invalid credentials")
		return
	}
	if !user.Verified {
		api.WriteError(w, http.StatusBadRequest, "please verify your email address")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid credentials")
		return
	}

	token, err := h.tokens.IssueAccess(*user)
	if err != nil {
		h.logger.Error("failed to issue token", "error", err, "user_id", user.ID)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID)
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	user, err := h.store.GetByID(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("failed to get user", "error", err, "user_id", identity.UserID)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		api.WriteError(w, http.StatusNotFound, "user not found")
		return
	}

	api.WriteJSON(w, http.StatusOK, user)
}

// HandleUpdateProfile accepts multipart form data so the profile image can
// ride along with the field updates.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	update := ProfileUpdate{
		Name:    r.FormValue("name"),
		Address: r.FormValue("address"),
		Phone:   r.FormValue("phone"),
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer func() { _ = file.Close() }()

		key := "profiles/" + uuid.New().String() + path.Ext(header.Filename)
		url, err := h.blobs.Put(r.Context(), key, header.Header.Get("Content-Type"), file)
		if err != nil {
			h.logger.Error("failed to store profile image", "error", err, "user_id", identity.UserID)
			api.WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		update.ImageURL = url
	}

	user, err := h.store.UpdateProfile(r.Context(), identity.UserID, update)
	if err != nil {
		if status, ok := api.ClientStatus(err); ok {
			api.WriteError(w, status, "user not found")
			return
		}
		h.logger.Error("failed to update profile", "error", err, "user_id", identity.UserID)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("profile updated", "user_id", user.ID)
	api.WriteJSON(w, http.StatusOK, user)
}
