package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"partshub-backend/internal/domain"
)

type couponRepository struct {
	db *pgxpool.Pool
}

func NewCouponRepository(db *pgxpool.Pool) domain.CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	const q = `
		SELECT id, code, type, value, usage_limit, used_count, start_at, expires_at, created_at
		FROM coupons
		WHERE code = $1`

	var (
		c         domain.Coupon
		id        pgtype.UUID
		value     pgtype.Numeric
		startAt   pgtype.Timestamp
		expiresAt pgtype.Timestamp
		createdAt pgtype.Timestamp
	)
	err := r.db.QueryRow(ctx, q, code).Scan(
		&id, &c.Code, &c.Type, &value, &c.UsageLimit, &c.UsedCount, &startAt, &expiresAt, &createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, err
	}

	c.ID = uuid.UUID(id.Bytes)
	c.Value = NumericToFloat64(value)
	c.StartAt = startAt.Time
	c.ExpiresAt = expiresAt.Time
	c.CreatedAt = createdAt.Time
	return &c, nil
}

// IncrementUsage is a compare-and-increment: the usage limit cannot be
// overrun even when concurrent shoppers apply the same code.
func (r *couponRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	const q = `
		UPDATE coupons
		SET used_count = used_count + 1
		WHERE id = $1 AND used_count < usage_limit`

	tag, err := r.db.Exec(ctx, q, pgtype.UUID{Bytes: id, Valid: true})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCouponExhausted
	}
	return nil
}
