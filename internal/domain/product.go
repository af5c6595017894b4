package domain

import "context"

type Product struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	Price      float64 `json:"price"`
	CategoryID string  `json:"categoryId"`
	BrandID    string  `json:"brandId"`
	Image      string  `json:"image"`
}

// RelatedQuery describes a related-products lookup driven by the cart's
// contents: match on category or brand, excluding what is already in the
// cart, in randomized order.
type RelatedQuery struct {
	CategoryIDs []string
	BrandIDs    []string
	ExcludeIDs  []string
	Limit       int
}

type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	GetRelated(ctx context.Context, q RelatedQuery) ([]Product, error)
}
