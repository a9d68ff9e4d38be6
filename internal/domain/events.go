package domain

import "time"

// OrderPlacedEvent is published after an order has been durably recorded.
// It carries the full snapshot lines so consumers can fan out per seller
// without reading the order store.
type OrderPlacedEvent struct {
	OrderID         string      `json:"order_id"`
	BuyerID         string      `json:"buyer_id"`
	BuyerName       string      `json:"buyer_name"`
	Total           int64       `json:"total"`
	ShippingAddress string      `json:"shipping_address"`
	Lines           []OrderLine `json:"lines"`
	Timestamp       time.Time   `json:"timestamp"`
}
