package accounts

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/squiirlabs/marketplace/internal/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	user.ID = uuid.New().String()

	return r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, address, phone, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.Address, user.Phone, user.ImageURL).
		Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(ctx, `
		SELECT id, name, email, password_hash, address, phone, image_url, verified, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, `
		SELECT id, name, email, password_hash, address, phone, image_url, verified, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
}

func (r *UserRepository) get(ctx context.Context, query string, arg any) (*domain.User, error) {
	user := &domain.User{}

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Address,
		&user.Phone, &user.ImageURL, &user.Verified, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}

// GetByIDs batch-loads users; missing ids are simply absent from the result.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, address, phone, image_url, verified, created_at, updated_at
		FROM users
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.Address, &user.Phone,
			&user.ImageURL, &user.Verified, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *UserRepository) MarkVerified(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET verified = TRUE, updated_at = NOW()
		WHERE id = $1
	`, id)
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

// ProfileUpdate carries the fields a user may change; empty strings leave
// the stored value untouched.
type ProfileUpdate struct {
	Name     string
	Address  string
	Phone    string
	ImageURL string
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*domain.User, error) {
	user := &domain.User{}

	err := r.db.QueryRowContext(ctx, `
		UPDATE users SET
			name = COALESCE(NULLIF($2, ''), name),
			address = COALESCE(NULLIF($3, ''), address),
			phone = COALESCE(NULLIF($4, ''), phone),
			image_url = COALESCE(NULLIF($5, ''), image_url),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, email, password_hash, address, phone, image_url, verified, created_at, updated_at
	`, id, update.Name, update.Address, update.Phone, update.ImageURL).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Address,
		&user.Phone, &user.ImageURL, &user.Verified, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return user, nil
}
