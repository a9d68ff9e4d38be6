package domain

import "time"

// CartLine is the stored (user, product) pair. At most one line exists per
// pair; repeat adds increment Quantity instead of inserting a new row.
type CartLine struct {
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartEntry is a cart line joined with the current product record. The price
// in here is for display only; the price actually charged is fixed at
// checkout time.
type CartEntry struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}
