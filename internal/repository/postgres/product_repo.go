package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"partshub-backend/internal/domain"
)

type productRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) domain.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
		SELECT id, name, slug, price, category_id, brand_id, COALESCE(image, '')
		FROM products
		WHERE id = $1`

	var (
		p     domain.Product
		price pgtype.Numeric
	)
	err := r.db.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.Name, &p.Slug, &price, &p.CategoryID, &p.BrandID, &p.Image,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %s not found", id)
		}
		return nil, err
	}
	p.Price = NumericToFloat64(price)
	return &p, nil
}

// GetRelated matches on category or brand, excludes ids already in the
// cart, and returns up to q.Limit rows in randomized order.
func (r *productRepository) GetRelated(ctx context.Context, q domain.RelatedQuery) ([]domain.Product, error) {
	const sql = `
		SELECT id, name, slug, price, category_id, brand_id, COALESCE(image, '')
		FROM products
		WHERE (category_id = ANY($1) OR brand_id = ANY($2))
		  AND NOT (id = ANY($3))
		ORDER BY random()
		LIMIT $4`

	rows, err := r.db.Query(ctx, sql, q.CategoryIDs, q.BrandIDs, q.ExcludeIDs, q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var (
			p     domain.Product
			price pgtype.Numeric
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &price, &p.CategoryID, &p.BrandID, &p.Image); err != nil {
			return nil, err
		}
		p.Price = NumericToFloat64(price)
		products = append(products, p)
	}
	return products, rows.Err()
}
