package domain

import "time"

// OrderLine is the snapshot embedded in an order: product name, seller and
// price are copied at order time so later product edits cannot retroactively
// change a placed order.
type OrderLine struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	SellerID    string `json:"seller_id"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
}

// Order is created exactly once by checkout and never mutated afterwards.
// Total is computed at creation time, not recomputed from the lines.
type Order struct {
	ID              string      `json:"id"`
	BuyerID         string      `json:"buyer_id"`
	Lines           []OrderLine `json:"lines"`
	Total           int64       `json:"total"`
	ShippingAddress string      `json:"shipping_address"`
	CreatedAt       time.Time   `json:"created_at"`
}
