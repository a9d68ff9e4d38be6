package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers missing cart lines, products, users and orders.
	ErrNotFound = errors.New("not found")

	// ErrEmptyCart rejects checkout on an empty cart instead of producing a
	// zero-total order.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrMissingAddress rejects checkout for buyers without a shipping
	// address on file.
	ErrMissingAddress = errors.New("shipping address is required")

	// ErrNoProducts means the seller has no catalog at all, as opposed to
	// ErrNoOrders which means the catalog exists but has zero sales.
	ErrNoProducts = errors.New("seller has no products listed")
	ErrNoOrders   = errors.New("no orders found for seller products")
)

// StaleCartItemError reports a cart line whose product no longer exists in
// the catalog. Checkout fails loudly instead of skipping the line, which
// would corrupt the total behind the buyer's back.
type StaleCartItemError struct {
	ProductID string
}

func (e *StaleCartItemError) Error() string {
	return fmt.Sprintf("cart references product %s which no longer exists", e.ProductID)
}
