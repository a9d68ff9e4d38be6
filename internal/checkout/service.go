package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/squiirlabs/marketplace/internal/domain"
	"github.com/squiirlabs/marketplace/internal/messaging"
)

type CartStore interface {
	ListLines(ctx context.Context, userID string) ([]domain.CartLine, error)
	Clear(ctx context.Context, userID string) error
}

type ProductResolver interface {
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
}

type BuyerStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Service turns a cart into an order. The order is the only durable outcome;
// the cart clear and the event publish both happen after the order commit and
// neither can undo it.
type Service struct {
	cart      CartStore
	products  ProductResolver
	buyers    BuyerStore
	orders    OrderStore
	publisher EventPublisher
	logger    *slog.Logger
}

func NewService(cart CartStore, products ProductResolver, buyers BuyerStore, orders OrderStore, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		cart:      cart,
		products:  products,
		buyers:    buyers,
		orders:    orders,
		publisher: publisher,
		logger:    logger,
	}
}

// Checkout materializes the user's cart into an immutable order. Product
// name, seller and price are copied from the catalog as it stands right now;
// nothing that happens to the products afterwards touches the order.
func (s *Service) Checkout(ctx context.Context, userID, shippingAddress string) (*domain.Order, error) {
	lines, err := s.cart.ListLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	buyer, err := s.buyers.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load buyer: %w", err)
	}
	if buyer == nil {
		return nil, domain.ErrNotFound
	}

	if shippingAddress == "" {
		shippingAddress = buyer.Address
	}

	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}

	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	order := &domain.Order{
		ID:              uuid.NewString(),
		BuyerID:         userID,
		ShippingAddress: shippingAddress,
	}

	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			// The product was deleted while it sat in the cart. The
			// whole checkout fails; nothing has been written yet.
			return nil, &domain.StaleCartItemError{ProductID: line.ProductID}
		}

		order.Lines = append(order.Lines, domain.OrderLine{
			ID:          uuid.NewString(),
			ProductID:   product.ID,
			ProductName: product.Name,
			SellerID:    product.OwnerID,
			Quantity:    line.Quantity,
			Price:       product.Price,
		})
		order.Total += product.Price * int64(line.Quantity)
	}

	// Checked after the stale scan: a cart that is both stale and
	// addressless reports the stale line first.
	if shippingAddress == "" {
		return nil, domain.ErrMissingAddress
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// The order is committed. A failed clear leaves stale cart lines, not a
	// broken order, and the clear is idempotent so a retry is safe.
	if err := s.cart.Clear(ctx, userID); err != nil {
		s.logger.Error("failed to clear cart after checkout", "error", err, "user_id", userID, "order_id", order.ID)
	}

	s.publishPlaced(ctx, order, buyer)

	return order, nil
}

// publishPlaced is fire and forget. Checkout already succeeded; a missing
// event degrades seller notifications, nothing else.
func (s *Service) publishPlaced(ctx context.Context, order *domain.Order, buyer *domain.User) {
	if s.publisher == nil {
		return
	}

	event := domain.OrderPlacedEvent{
		OrderID:         order.ID,
		BuyerID:         order.BuyerID,
		BuyerName:       buyer.Name,
		Total:           order.Total,
		ShippingAddress: order.ShippingAddress,
		Lines:           order.Lines,
		Timestamp:       time.Now().UTC(),
	}

	if err := s.publisher.Publish(ctx, order.ID, event); err != nil {
		s.logger.Error("failed to publish order placed event",
			"error", err, "order_id", order.ID, "topic", messaging.TopicOrderPlaced)
	}
}
