package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"partshub-backend/internal/domain"
)

// memStore is an in-memory domain.CartStore for tests.
type memStore struct {
	mu      sync.Mutex
	carts   map[string]*domain.Cart
	flashes map[string]map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		carts:   make(map[string]*domain.Cart),
		flashes: make(map[string]map[string]string),
	}
}

func (s *memStore) Get(sessionID string) (*domain.Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[sessionID]
	return cart, ok
}

func (s *memStore) Put(cart *domain.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cart.SessionID] = cart
}

func (s *memStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}

func (s *memStore) Flash(sessionID, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flashes[sessionID] == nil {
		s.flashes[sessionID] = make(map[string]string)
	}
	s.flashes[sessionID][key] = value
}

func (s *memStore) PopFlash(sessionID string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.flashes[sessionID]
	delete(s.flashes, sessionID)
	return out
}

type mockProductRepo struct {
	GetByIDFn    func(ctx context.Context, id string) (*domain.Product, error)
	GetRelatedFn func(ctx context.Context, q domain.RelatedQuery) ([]domain.Product, error)

	relatedCalls int
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockProductRepo) GetRelated(ctx context.Context, q domain.RelatedQuery) ([]domain.Product, error) {
	m.relatedCalls++
	return m.GetRelatedFn(ctx, q)
}

type mockCouponRepo struct {
	GetByCodeFn func(ctx context.Context, code string) (*domain.Coupon, error)

	increments []uuid.UUID
	incErr     error
}

func (m *mockCouponRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return m.GetByCodeFn(ctx, code)
}

func (m *mockCouponRepo) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	if m.incErr != nil {
		return m.incErr
	}
	m.increments = append(m.increments, id)
	return nil
}

type mockAddressRepo struct {
	ListByUserFn func(ctx context.Context, userID string) ([]domain.Address, error)
	CreateFn     func(ctx context.Context, addr *domain.Address) error
}

func (m *mockAddressRepo) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	return m.ListByUserFn(ctx, userID)
}

func (m *mockAddressRepo) Create(ctx context.Context, addr *domain.Address) error {
	return m.CreateFn(ctx, addr)
}

type mockGateway struct {
	CreateFn func(ctx context.Context, items []domain.CheckoutLineItem, successURL, cancelURL string) (*domain.GatewaySession, error)

	calls     int
	lastItems []domain.CheckoutLineItem
}

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, items []domain.CheckoutLineItem, successURL, cancelURL string) (*domain.GatewaySession, error) {
	m.calls++
	m.lastItems = items
	return m.CreateFn(ctx, items, successURL, cancelURL)
}

type mockNotifier struct {
	err      error
	invoices []*domain.Invoice
}

func (m *mockNotifier) SendInvoice(ctx context.Context, inv *domain.Invoice) error {
	if m.err != nil {
		return m.err
	}
	m.invoices = append(m.invoices, inv)
	return nil
}

type mockOutbox struct {
	records []*domain.FulfillmentRecord
}

func (m *mockOutbox) Record(ctx context.Context, rec *domain.FulfillmentRecord) error {
	m.records = append(m.records, rec)
	return nil
}

type mockArchiver struct {
	keys []string
}

func (m *mockArchiver) Archive(ctx context.Context, inv *domain.Invoice) (string, error) {
	key := "invoices/" + inv.OrderID + ".json"
	m.keys = append(m.keys, key)
	return key, nil
}

// mockCache implements pkg/cache.CacheService on a plain map, no TTL.
type mockCache struct {
	data map[string]interface{}
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]interface{})}
}

func (m *mockCache) Get(key string) (interface{}, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mockCache) Set(key string, value interface{}, ttl time.Duration) {
	m.data[key] = value
}

func (m *mockCache) Delete(key string) {
	delete(m.data, key)
}

func (m *mockCache) Flush() {
	m.data = make(map[string]interface{})
}
