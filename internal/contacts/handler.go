package contacts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/squiirlabs/marketplace/internal/api"
	"github.com/squiirlabs/marketplace/internal/auth"
	"github.com/squiirlabs/marketplace/internal/domain"
)

type ContactStore interface {
	Create(ctx context.Context, contact *domain.Contact) error
	ListRecentForRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Contact, error)
	MarkRead(ctx context.Context, id, recipientID string) error
}

type UserFinder interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

const recentLimit = 5

type Handler struct {
	store  ContactStore
	users  UserFinder
	mailer EmailSender
	logger *slog.Logger
}

func NewHandler(store ContactStore, users UserFinder, mailer EmailSender, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		users:  users,
		mailer: mailer,
		logger: logger,
	}
}

type createContactRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Message     string `json:"message" validate:"required"`
	RecipientID string `json:"recipient_id" validate:"required,uuid4"`
}

// HandleCreate records an inquiry for a seller. The inquiry is stored first;
// the confirmation and notification emails are best effort.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := api.Validate(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	recipient, err := h.users.GetByID(r.Context(), req.RecipientID)
	if err != nil {
		h.logger.Error("failed to look up recipient", "error", err, "recipient_id", req.RecipientID)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if recipient == nil {
		api.WriteError(w, http.StatusNotFound, "recipient not found")
		return
	}

	contact := &domain.Contact{
		Name:        req.Name,
		Email:       req.Email,
		Message:     req.Message,
		RecipientID: req.RecipientID,
	}
	if err := h.store.Create(r.Context(), contact); err != nil {
		h.logger.Error("failed to store contact", "error", err)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.notify(r.Context(), contact, recipient)

	h.logger.Info("contact stored", "contact_id", contact.ID, "recipient_id", contact.RecipientID)
	api.WriteJSON(w, http.StatusCreated, contact)
}

func (h *Handler) HandleListRecent(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	contacts, err := h.store.ListRecentForRecipient(r.Context(), identity.UserID, recentLimit)
	if err != nil {
		h.logger.Error("failed to list contacts", "error", err, "recipient_id", identity.UserID)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	api.WriteJSON(w, http.StatusOK, contacts)
}

func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "missing contact id")
		return
	}

	if err := h.store.MarkRead(r.Context(), id, identity.UserID); err != nil {
		if status, ok := api.ClientStatus(err); ok {
			api.WriteError(w, status, "contact not found")
			return
		}
		h.logger.Error("failed to mark contact read", "error", err, "contact_id", id)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "contact marked read"})
}

func (h *Handler) notify(ctx context.Context, contact *domain.Contact, recipient *domain.User) {
	if h.mailer == nil {
		return
	}

	confirmation := fmt.Sprintf("Hi %s,\n\nYour message to %s has been delivered.", contact.Name, recipient.Name)
	if err := h.mailer.Send(ctx, contact.Email, "We received your message", confirmation); err != nil {
		h.logger.Error("failed to send contact confirmation", "error", err, "contact_id", contact.ID)
	}

	notification := fmt.Sprintf("%s <%s> wrote:\n\n%s", contact.Name, contact.Email, contact.Message)
	if err := h.mailer.Send(ctx, recipient.Email, "New inquiry about your listings", notification); err != nil {
		h.logger.Error("failed to notify recipient", "error", err, "contact_id", contact.ID)
	}
}
