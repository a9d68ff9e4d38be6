package cart

import (
	"context"
	"database/sql"

	"github.com/squiirlabs/marketplace/internal/domain"
)

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

// AddItem creates the (user, product) line or increments its quantity. The
// single upsert statement is what closes the concurrent read-modify-write
// race: two simultaneous adds both land as increments, never as overwrites.
func (r *CartRepository) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.CartLine, error) {
	line := &domain.CartLine{}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING user_id, product_id, quantity, created_at, updated_at
	`, userID, productID, quantity).Scan(
		&line.UserID, &line.ProductID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return line, nil
}

// RemoveItem deletes the line outright. Callers can tell "removed" from
// "nothing to remove" by the ErrNotFound return.
func (r *CartRepository) RemoveItem(ctx context.Context, userID, productID string) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// ListLines returns the raw cart lines, oldest first. Checkout works from
// these, not from the joined display view.
func (r *CartRepository) ListLines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.UserID, &line.ProductID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// ListJoined joins cart lines with the current product records for display.
// Prices in the result are whatever the catalog says right now; the charged
// price is fixed only at checkout. Lines whose product has vanished are
// omitted here and surface as StaleCartItemError at checkout instead.
func (r *CartRepository) ListJoined(ctx context.Context, userID string) ([]domain.CartEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.description, p.price, p.owner_id, p.image_url,
			p.created_at, p.updated_at, c.quantity
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	entries := []domain.CartEntry{}
	for rows.Next() {
		var entry domain.CartEntry
		if err := rows.Scan(
			&entry.Product.ID, &entry.Product.Name, &entry.Product.Description,
			&entry.Product.Price, &entry.Product.OwnerID, &entry.Product.ImageURL,
			&entry.Product.CreatedAt, &entry.Product.UpdatedAt, &entry.Quantity,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Clear purges the user's whole cart. It is idempotent so a checkout retry
// that races a crashed cart-clear cannot fail.
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items WHERE user_id = $1
	`, userID)
	return err
}
