package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"partshub-backend/internal/domain"
)

type addressRepository struct {
	db *pgxpool.Pool
}

func NewAddressRepository(db *pgxpool.Pool) domain.AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	const q = `
		SELECT id, user_id, address_line_1, COALESCE(address_line_2, ''), city, state, postal_code, country, created_at
		FROM addresses
		WHERE user_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addrs []domain.Address
	for rows.Next() {
		var (
			a         domain.Address
			createdAt pgtype.Timestamp
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Line1, &a.Line2, &a.City, &a.State, &a.PostalCode, &a.Country, &createdAt); err != nil {
			return nil, err
		}
		a.CreatedAt = createdAt.Time
		addrs = append(addrs, a)
	}
	return addrs, rows.Err()
}

func (r *addressRepository) Create(ctx context.Context, addr *domain.Address) error {
	if addr.ID == "" {
		addr.ID = uuid.NewString()
	}

	const q = `
		INSERT INTO addresses (id, user_id, address_line_1, address_line_2, city, state, postal_code, country)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)
		RETURNING created_at`

	var createdAt pgtype.Timestamp
	err := r.db.QueryRow(ctx, q,
		addr.ID, addr.UserID, addr.Line1, addr.Line2, addr.City, addr.State, addr.PostalCode, addr.Country,
	).Scan(&createdAt)
	if err != nil {
		return err
	}
	addr.CreatedAt = createdAt.Time
	return nil
}
