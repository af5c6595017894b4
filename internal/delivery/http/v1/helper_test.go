package v1

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"partshub-backend/internal/domain"
	"partshub-backend/internal/usecase"
)

// testStore is an in-memory domain.CartStore for handler tests.
type testStore struct {
	mu      sync.Mutex
	carts   map[string]*domain.Cart
	flashes map[string]map[string]string
}

func newTestStore() *testStore {
	return &testStore{
		carts:   make(map[string]*domain.Cart),
		flashes: make(map[string]map[string]string),
	}
}

func (s *testStore) Get(sessionID string) (*domain.Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[sessionID]
	return cart, ok
}

func (s *testStore) Put(cart *domain.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cart.SessionID] = cart
}

func (s *testStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}

func (s *testStore) Flash(sessionID, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flashes[sessionID] == nil {
		s.flashes[sessionID] = make(map[string]string)
	}
	s.flashes[sessionID][key] = value
}

func (s *testStore) PopFlash(sessionID string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.flashes[sessionID]
	delete(s.flashes, sessionID)
	return out
}

type stubProductRepo struct {
	GetByIDFn    func(ctx context.Context, id string) (*domain.Product, error)
	GetRelatedFn func(ctx context.Context, q domain.RelatedQuery) ([]domain.Product, error)
}

func (s *stubProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.GetByIDFn(ctx, id)
}

func (s *stubProductRepo) GetRelated(ctx context.Context, q domain.RelatedQuery) ([]domain.Product, error) {
	return s.GetRelatedFn(ctx, q)
}

type stubCouponRepo struct {
	GetByCodeFn func(ctx context.Context, code string) (*domain.Coupon, error)
}

func (s *stubCouponRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return s.GetByCodeFn(ctx, code)
}

func (s *stubCouponRepo) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubAddressRepo struct {
	ListByUserFn func(ctx context.Context, userID string) ([]domain.Address, error)
	CreateFn     func(ctx context.Context, addr *domain.Address) error
}

func (s *stubAddressRepo) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	return s.ListByUserFn(ctx, userID)
}

func (s *stubAddressRepo) Create(ctx context.Context, addr *domain.Address) error {
	return s.CreateFn(ctx, addr)
}

type stubGateway struct {
	CreateFn func(ctx context.Context, items []domain.CheckoutLineItem, successURL, cancelURL string) (*domain.GatewaySession, error)
}

func (s *stubGateway) CreateCheckoutSession(ctx context.Context, items []domain.CheckoutLineItem, successURL, cancelURL string) (*domain.GatewaySession, error) {
	return s.CreateFn(ctx, items, successURL, cancelURL)
}

type stubNotifier struct {
	err      error
	invoices []*domain.Invoice
}

func (s *stubNotifier) SendInvoice(ctx context.Context, inv *domain.Invoice) error {
	if s.err != nil {
		return s.err
	}
	s.invoices = append(s.invoices, inv)
	return nil
}

type stubOutbox struct {
	records []*domain.FulfillmentRecord
}

func (s *stubOutbox) Record(ctx context.Context, rec *domain.FulfillmentRecord) error {
	s.records = append(s.records, rec)
	return nil
}

type stubCache struct {
	data map[string]interface{}
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string]interface{})}
}

func (s *stubCache) Get(key string) (interface{}, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *stubCache) Set(key string, value interface{}, d time.Duration) {
	s.data[key] = value
}

func (s *stubCache) Delete(key string) {
	delete(s.data, key)
}

func (s *stubCache) Flush() {
	s.data = make(map[string]interface{})
}

// fixture wires real usecases over in-memory stubs behind the same route
// table the server registers.
type fixture struct {
	store     *testStore
	products  *stubProductRepo
	coupons   *stubCouponRepo
	addresses *stubAddressRepo
	gateway   *stubGateway
	notifier  *stubNotifier
	outbox    *stubOutbox
	mux       *http.ServeMux
}

func newFixture() *fixture {
	f := &fixture{
		store:    newTestStore(),
		notifier: &stubNotifier{},
		outbox:   &stubOutbox{},
	}
	f.products = &stubProductRepo{
		GetByIDFn: func(ctx context.Context, id string) (*domain.Product, error) {
			return &domain.Product{
				ID: id, Name: "NVMe SSD 1TB", Price: 100,
				CategoryID: "storage", BrandID: "samsung",
			}, nil
		},
		GetRelatedFn: func(ctx context.Context, q domain.RelatedQuery) ([]domain.Product, error) {
			return []domain.Product{{ID: "p9", Name: "SATA Cable"}}, nil
		},
	}
	f.coupons = &stubCouponRepo{
		GetByCodeFn: func(ctx context.Context, code string) (*domain.Coupon, error) {
			return &domain.Coupon{
				ID: uuid.New(), Code: code, Type: domain.CouponTypeFixed, Value: 50,
				UsageLimit: 10,
				StartAt:    time.Now().Add(-time.Hour),
				ExpiresAt:  time.Now().Add(time.Hour),
			}, nil
		},
	}
	f.addresses = &stubAddressRepo{
		ListByUserFn: func(ctx context.Context, userID string) ([]domain.Address, error) {
			return []domain.Address{{
				ID: "addr1", UserID: userID, Line1: "1 Main St",
				City: "Quezon City", State: "NCR", PostalCode: "1100", Country: "PH",
			}}, nil
		},
		CreateFn: func(ctx context.Context, addr *domain.Address) error {
			addr.ID = uuid.NewString()
			return nil
		},
	}
	f.gateway = &stubGateway{
		CreateFn: func(ctx context.Context, items []domain.CheckoutLineItem, successURL, cancelURL string) (*domain.GatewaySession, error) {
			return &domain.GatewaySession{ID: "cs_test", CheckoutURL: "https://pay.example/cs_test"}, nil
		},
	}

	cartUC := usecase.NewCartUsecase(f.store, f.products, 0.12, 100)
	couponUC := usecase.NewCouponUsecase(f.store, f.coupons, 0.12, 100)
	catalogUC := usecase.NewCatalogUsecase(f.store, f.products, newStubCache(), time.Minute)
	addressUC := usecase.NewAddressUsecase(f.store, f.addresses)
	checkoutUC := usecase.NewCheckoutUsecase(
		f.store, f.addresses, f.gateway, f.notifier, nil, f.outbox,
		0.12, 100,
		"PHP", "https://shop.example/payment/success", "https://shop.example/payment/failed",
		time.Second,
	)

	cartHandler := NewCartHandler(cartUC, couponUC)
	catalogHandler := NewCatalogHandler(catalogUC)
	checkoutHandler := NewCheckoutHandler(checkoutUC)
	addressHandler := NewAddressHandler(addressUC)

	mux := http.NewServeMux()
	mux.Handle("GET /api/v1/cart", authed(cartHandler.GetCart))
	mux.Handle("POST /api/v1/cart/items", authed(cartHandler.AddItem))
	mux.Handle("PUT /api/v1/cart/items/{productId}", authed(cartHandler.UpdateQuantity))
	mux.Handle("DELETE /api/v1/cart/items/{productId}", authed(cartHandler.RemoveItem))
	mux.Handle("POST /api/v1/cart/coupon", authed(cartHandler.ApplyCoupon))
	mux.Handle("PUT /api/v1/cart/shipping-option", authed(cartHandler.SetShippingOption))
	mux.Handle("PUT /api/v1/cart/payment-method", authed(cartHandler.SetPaymentMethod))
	mux.Handle("GET /api/v1/cart/related", authed(catalogHandler.RelatedProducts))
	mux.Handle("GET /api/v1/cart/flash", authed(cartHandler.GetFlash))
	mux.Handle("POST /api/v1/checkout", authed(checkoutHandler.Checkout))
	mux.Handle("GET /payment/success", authed(checkoutHandler.PaymentSuccess))
	mux.Handle("GET /payment/failed", authed(checkoutHandler.PaymentFailed))
	mux.Handle("GET /api/v1/user/addresses", authed(addressHandler.ListAddresses))
	mux.Handle("POST /api/v1/user/addresses", authed(addressHandler.AddAddress))
	mux.Handle("PUT /api/v1/user/addresses/{id}/select", authed(addressHandler.SelectAddress))
	f.mux = mux
	return f
}

// authed injects a fixed shopper, standing in for the JWT middleware.
func authed(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := &domain.User{ID: "u1", Email: "shopper@example.com", Role: "customer"}
		h(w, r.WithContext(context.WithValue(r.Context(), domain.UserContextKey, user)))
	})
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
