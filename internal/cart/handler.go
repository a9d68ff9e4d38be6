package cart

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/squiirlabs/marketplace/internal/api"
	"github.com/squiirlabs/marketplace/internal/auth"
	"github.com/squiirlabs/marketplace/internal/domain"
)

type CartStore interface {
	AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.CartLine, error)
	RemoveItem(ctx context.Context, userID, productID string) error
	ListJoined(ctx context.Context, userID string) ([]domain.CartEntry, error)
}

type ProductFinder interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type Handler struct {
	store    CartStore
	products ProductFinder
	cache    Cache
	logger   *slog.Logger
}

func NewHandler(store CartStore, products ProductFinder, cache Cache, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		products: products,
		cache:    cache,
		logger:   logger,
	}
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

// HandleAdd adds a product to the caller's cart, or bumps the quantity if a
// line for it already exists.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := api.Validate(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		h.logger.Error("failed to look up product", "error", err, "product_id", req.ProductID)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if product == nil {
		api.WriteError(w, http.StatusNotFound, "product not found")
		return
	}

	line, err := h.store.AddItem(r.Context(), identity.UserID, req.ProductID, req.Quantity)
	if err != nil {
		h.logger.Error("failed to add cart item", "error", err, "user_id", identity.UserID)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.invalidate(r.Context(), identity.UserID)

	h.logger.Info("cart item added", "user_id", identity.UserID, "product_id", req.ProductID, "quantity", line.Quantity)
	api.WriteJSON(w, http.StatusOK, line)
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	productID := r.PathValue("productId")
	if productID == "" {
		api.WriteError(w, http.StatusBadRequest, "missing product id")
		return
	}

	if err := h.store.RemoveItem(r.Context(), identity.UserID, productID); err != nil {
		if status, ok := api.ClientStatus(err); ok {
			api.WriteError(w, status, "cart item not found")
			return
		}
		h.logger.Error("failed to remove cart item", "error", err, "user_id", identity.UserID)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.invalidate(r.Context(), identity.UserID)

	h.logger.Info("cart item removed", "user_id", identity.UserID, "product_id", productID)
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "item removed"})
}

// HandleList returns cart lines joined with live product data. These prices
// are for display; checkout fixes the charged price.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	if h.cache != nil {
		if entries, err := h.cache.Get(r.Context(), identity.UserID); err == nil {
			api.WriteJSON(w, http.StatusOK, entries)
			return
		}
	}

	entries, err := h.store.ListJoined(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("failed to list cart", "error", err, "user_id", identity.UserID)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), identity.UserID, entries); err != nil {
			h.logger.Warn("failed to cache cart", "error", err, "user_id", identity.UserID)
		}
	}

	api.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) invalidate(ctx context.Context, userID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Delete(ctx, userID); err != nil {
		h.logger.Warn("failed to invalidate cart cache", "error", err, "user_id", userID)
	}
}
