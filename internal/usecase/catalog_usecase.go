package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"partshub-backend/internal/domain"
	"partshub-backend/pkg/cache"
)

const relatedProductsLimit = 9

// CatalogUsecase serves the "related products" strip on the cart page: up
// to nine products sharing a category or brand with the cart's contents,
// excluding what is already in the cart, in randomized order.
type CatalogUsecase struct {
	store    domain.CartStore
	products domain.ProductRepository
	cache    cache.CacheService
	cacheTTL time.Duration
}

func NewCatalogUsecase(store domain.CartStore, products domain.ProductRepository, c cache.CacheService, cacheTTL time.Duration) *CatalogUsecase {
	return &CatalogUsecase{
		store:    store,
		products: products,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// RelatedProducts is a read-through to the catalog, cached briefly per
// cart composition. An empty cart issues no query at all.
func (u *CatalogUsecase) RelatedProducts(ctx context.Context, sessionID string) ([]domain.Product, error) {
	cart, ok := u.store.Get(sessionID)
	if !ok || cart.IsEmpty() {
		return nil, nil
	}

	key := relatedCacheKey(cart.ProductIDs())
	if cached, ok := u.cache.Get(key); ok {
		return cached.([]domain.Product), nil
	}

	products, err := u.products.GetRelated(ctx, domain.RelatedQuery{
		CategoryIDs: cart.DistinctCategoryIDs(),
		BrandIDs:    cart.DistinctBrandIDs(),
		ExcludeIDs:  cart.ProductIDs(),
		Limit:       relatedProductsLimit,
	})
	if err != nil {
		return nil, err
	}

	u.cache.Set(key, products, u.cacheTTL)
	return products, nil
}

func relatedCacheKey(productIDs []string) string {
	ids := make([]string, len(productIDs))
	copy(ids, productIDs)
	sort.Strings(ids)
	return "related:" + strings.Join(ids, ",")
}
