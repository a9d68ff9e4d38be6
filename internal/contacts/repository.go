package contacts

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/squiirlabs/marketplace/internal/domain"
)

type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	contact.ID = uuid.NewString()
	contact.Status = domain.ContactStatusUnread

	return r.db.QueryRowContext(ctx, `
		INSERT INTO contacts (id, name, email, message, recipient_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, contact.ID, contact.Name, contact.Email, contact.Message, contact.RecipientID, contact.Status).
		Scan(&contact.CreatedAt)
}

// ListRecentForRecipient returns the recipient's latest inquiries, newest
// first.
func (r *ContactRepository) ListRecentForRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, message, recipient_id, status, created_at
		FROM contacts
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	contacts := []domain.Contact{}
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Message, &c.RecipientID, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return contacts, nil
}

func (r *ContactRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE contacts SET status = $1
		WHERE id = $2 AND recipient_id = $3 AND status = $4
	`, domain.ContactStatusRead, id, recipientID, domain.ContactStatusUnread)
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
