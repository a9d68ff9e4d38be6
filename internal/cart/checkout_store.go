package cart

import (
	"context"

	"github.com/squiirlabs/marketplace/internal/domain"
)

// CheckoutStore adapts the repository for the checkout engine so that
// clearing the cart also drops the cached view. Cache failures are ignored:
// the entry expires on its own and the stored lines are already gone.
type CheckoutStore struct {
	repo  *CartRepository
	cache Cache
}

func NewCheckoutStore(repo *CartRepository, cache Cache) *CheckoutStore {
	return &CheckoutStore{repo: repo, cache: cache}
}

func (s *CheckoutStore) ListLines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	return s.repo.ListLines(ctx, userID)
}

func (s *CheckoutStore) Clear(ctx context.Context, userID string) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, userID)
	}
	return nil
}
