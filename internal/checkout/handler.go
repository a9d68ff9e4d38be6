package checkout

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/squiirlabs/marketplace/internal/api"
	"github.com/squiirlabs/marketplace/internal/auth"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type checkoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
}

// HandleCheckout places an order from the caller's cart. The body is
// optional; without it the buyer's profile address is used.
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.service.Checkout(r.Context(), identity.UserID, req.ShippingAddress)
	if err != nil {
		if status, ok := api.ClientStatus(err); ok {
			api.WriteError(w, status, err.Error())
			return
		}
		h.logger.Error("checkout failed", "error", err, "user_id", identity.UserID)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("order placed",
		"order_id", order.ID, "buyer_id", order.BuyerID,
		"total", order.Total, "lines", len(order.Lines))

	api.WriteJSON(w, http.StatusCreated, order)
}
