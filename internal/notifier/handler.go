package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/squiirlabs/marketplace/internal/domain"
)

type SellerDirectory interface {
	GetByIDs(ctx context.Context, ids []string) ([]domain.User, error)
}

type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Handler consumes order placed events and mails every seller whose products
// the order contains. One email per seller, covering only their lines.
type Handler struct {
	sellers SellerDirectory
	mailer  EmailSender
	logger  *slog.Logger
}

func NewHandler(sellers SellerDirectory, mailer EmailSender, logger *slog.Logger) *Handler {
	return &Handler{
		sellers: sellers,
		mailer:  mailer,
		logger:  logger,
	}
}

// Handle processes one event. Per-seller delivery failures are logged and
// skipped rather than returned: a retry would re-mail the sellers that
// already got theirs.
func (h *Handler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderPlacedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order placed event: %w", err)
	}

	h.logger.Info("processing order placed event", "order_id", event.OrderID, "buyer_id", event.BuyerID)

	bySeller := make(map[string][]domain.OrderLine)
	var sellerIDs []string
	for _, line := range event.Lines {
		if _, ok := bySeller[line.SellerID]; !ok {
			sellerIDs = append(sellerIDs, line.SellerID)
		}
		bySeller[line.SellerID] = append(bySeller[line.SellerID], line)
	}

	sellers, err := h.sellers.GetByIDs(ctx, sellerIDs)
	if err != nil {
		return fmt.Errorf("load sellers: %w", err)
	}

	sellerByID := make(map[string]domain.User, len(sellers))
	for _, s := range sellers {
		sellerByID[s.ID] = s
	}

	for _, sellerID := range sellerIDs {
		seller, ok := sellerByID[sellerID]
		if !ok {
			// The seller account was removed after the sale. Nothing
			// to notify.
			h.logger.Warn("seller not found, skipping notification", "seller_id", sellerID, "order_id", event.OrderID)
			continue
		}

		subject, body := composeSaleEmail(event, bySeller[sellerID])
		if err := h.mailer.Send(ctx, seller.Email, subject, body); err != nil {
			h.logger.Error("failed to notify seller",
				"error", err, "seller_id", sellerID, "order_id", event.OrderID)
			continue
		}

		h.logger.Info("seller notified", "seller_id", sellerID, "order_id", event.OrderID, "lines", len(bySeller[sellerID]))
	}

	return nil
}

func composeSaleEmail(event domain.OrderPlacedEvent, lines []domain.OrderLine) (subject, body string) {
	subject = "You made a sale: order " + event.OrderID

	var b strings.Builder
	fmt.Fprintf(&b, "%s just ordered the following items:\n\n", event.BuyerName)
	for _, line := range lines {
		fmt.Fprintf(&b, "  %dx %s at %s each\n", line.Quantity, line.ProductName, formatPrice(line.Price))
	}
	fmt.Fprintf(&b, "\nShip to: %s\n", event.ShippingAddress)

	return subject, b.String()
}

// formatPrice renders a minor-unit amount as a decimal string.
func formatPrice(amount int64) string {
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}
