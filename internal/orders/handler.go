package orders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/squiirlabs/marketplace/internal/api"
	"github.com/squiirlabs/marketplace/internal/auth"
	"github.com/squiirlabs/marketplace/internal/domain"
)

type OrderReader interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
}

type Handler struct {
	repo   OrderReader
	report *SellerReportService
	logger *slog.Logger
}

func NewHandler(repo OrderReader, report *SellerReportService, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		report: report,
		logger: logger,
	}
}

// HandleGet returns one of the caller's orders. Other buyers' orders come
// back as 404, not 403, so order ids cannot be probed.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "id", id)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if order == nil || order.BuyerID != identity.UserID {
		api.WriteError(w, http.StatusNotFound, "order not found")
		return
	}

	api.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	orders, err := h.repo.ListByBuyer(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("failed to list orders", "error", err, "buyer_id", identity.UserID)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	api.WriteJSON(w, http.StatusOK, orders)
}

// HandleSellerReport returns the caller's sales grouped by buyer.
func (h *Handler) HandleSellerReport(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	report, err := h.report.Report(r.Context(), identity.UserID)
	if err != nil {
		if status, ok := api.ClientStatus(err); ok {
			api.WriteError(w, status, err.Error())
			return
		}
		h.logger.Error("failed to build seller report", "error", err, "seller_id", identity.UserID)
		api.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("seller report built", "seller_id", identity.UserID, "buyers", len(report))
	api.WriteJSON(w, http.StatusOK, report)
}
