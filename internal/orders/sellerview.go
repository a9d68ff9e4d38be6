package orders

import (
	"context"
	"fmt"
	"sort"

	"github.com/squiirlabs/marketplace/internal/domain"
)

type ProductLister interface {
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Product, error)
}

type OrderFinder interface {
	ListIDsByProducts(ctx context.Context, productIDs []string) ([]string, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Order, error)
}

type BuyerDirectory interface {
	GetByIDs(ctx context.Context, ids []string) ([]domain.User, error)
}

// ReportLine is one sold item in the seller report. The name comes from the
// current product record; quantity and price are the order-time snapshot, so
// the report shows what the buyer actually paid.
type ReportLine struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
}

// BuyerGroup collects everything one buyer has ordered from the seller,
// across all their orders.
type BuyerGroup struct {
	BuyerID   string       `json:"buyer_id"`
	BuyerName string       `json:"buyer_name"`
	Items     []ReportLine `json:"items"`
}

// SellerReportService reconstructs which buyers ordered the seller's products.
// Ownership is evaluated now, not at order time: the report covers the
// products the seller currently lists.
type SellerReportService struct {
	products ProductLister
	orders   OrderFinder
	buyers   BuyerDirectory
}

func NewSellerReportService(products ProductLister, orders OrderFinder, buyers BuyerDirectory) *SellerReportService {
	return &SellerReportService{
		products: products,
		orders:   orders,
		buyers:   buyers,
	}
}

func (s *SellerReportService) Report(ctx context.Context, sellerID string) ([]BuyerGroup, error) {
	products, err := s.products.ListByOwner(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list seller products: %w", err)
	}
	if len(products) == 0 {
		return nil, domain.ErrNoProducts
	}

	productIDs := make([]string, 0, len(products))
	nameByID := make(map[string]string, len(products))
	for _, p := range products {
		productIDs = append(productIDs, p.ID)
		nameByID[p.ID] = p.Name
	}

	orderIDs, err := s.orders.ListIDsByProducts(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	if len(orderIDs) == 0 {
		return nil, domain.ErrNoOrders
	}

	orders, err := s.orders.GetByIDs(ctx, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	groups := make(map[string]*BuyerGroup)
	var buyerIDs []string

	for _, order := range orders {
		for _, line := range order.Lines {
			name, mine := nameByID[line.ProductID]
			if !mine {
				// The order also holds other sellers' lines; only
				// ours belong in the report.
				continue
			}

			group, ok := groups[order.BuyerID]
			if !ok {
				group = &BuyerGroup{BuyerID: order.BuyerID}
				groups[order.BuyerID] = group
				buyerIDs = append(buyerIDs, order.BuyerID)
			}

			group.Items = append(group.Items, ReportLine{
				ProductID:   line.ProductID,
				ProductName: name,
				Quantity:    line.Quantity,
				Price:       line.Price,
			})
		}
	}

	if len(buyerIDs) == 0 {
		return nil, domain.ErrNoOrders
	}

	buyers, err := s.buyers.GetByIDs(ctx, buyerIDs)
	if err != nil {
		return nil, fmt.Errorf("load buyers: %w", err)
	}
	for _, buyer := range buyers {
		if group, ok := groups[buyer.ID]; ok {
			group.BuyerName = buyer.Name
		}
	}

	report := make([]BuyerGroup, 0, len(buyerIDs))
	for _, id := range buyerIDs {
		report = append(report, *groups[id])
	}
	sort.Slice(report, func(i, j int) bool { return report[i].BuyerName < report[j].BuyerName })

	return report, nil
}
