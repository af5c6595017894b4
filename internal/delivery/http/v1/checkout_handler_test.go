package v1

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"partshub-backend/internal/domain"
	"partshub-backend/internal/usecase"
)

func TestCheckoutHandler(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		f := newFixture()

		rec := f.do(t, http.MethodPost, "/api/v1/checkout", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("missing address maps to 422 with the state", func(t *testing.T) {
		f := newFixture()
		f.addresses.ListByUserFn = func(ctx context.Context, userID string) ([]domain.Address, error) {
			return nil, nil
		}
		f.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":"p1","quantity":1}`)

		rec := f.do(t, http.MethodPost, "/api/v1/checkout", "")
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
		var res usecase.CheckoutResult
		decodeBody(t, rec, &res)
		if res.State != domain.CheckoutStateAddressRequired {
			t.Fatalf("state = %s", res.State)
		}
	})

	t.Run("cash on delivery completes in one call", func(t *testing.T) {
		f := newFixture()
		f.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":"p1","quantity":2}`)

		rec := f.do(t, http.MethodPost, "/api/v1/checkout", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
		var res usecase.CheckoutResult
		decodeBody(t, rec, &res)
		if res.State != domain.CheckoutStateCompleted || res.OrderID == "" {
			t.Fatalf("result = %+v", res)
		}
		if len(f.notifier.invoices) != 1 {
			t.Fatalf("invoices = %d", len(f.notifier.invoices))
		}
	})

	t.Run("hosted branch returns the gateway redirect", func(t *testing.T) {
		f := newFixture()
		f.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":"p1","quantity":2}`)
		f.do(t, http.MethodPut, "/api/v1/cart/payment-method", `{"method":"hosted"}`)

		rec := f.do(t, http.MethodPost, "/api/v1/checkout", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
		var res usecase.CheckoutResult
		decodeBody(t, rec, &res)
		if res.State != domain.CheckoutStateHostedPayment {
			t.Fatalf("state = %s", res.State)
		}
		if res.RedirectURL != "https://pay.example/cs_test" {
			t.Fatalf("redirect = %s", res.RedirectURL)
		}
	})

	t.Run("gateway failure maps to 502", func(t *testing.T) {
		f := newFixture()
		f.gateway.CreateFn = func(ctx context.Context, items []domain.CheckoutLineItem, successURL, cancelURL string) (*domain.GatewaySession, error) {
			return nil, errors.New("boom")
		}
		f.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":"p1","quantity":2}`)
		f.do(t, http.MethodPut, "/api/v1/cart/payment-method", `{"method":"hosted"}`)

		rec := f.do(t, http.MethodPost, "/api/v1/checkout", "")
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("status = %d", rec.Code)
		}
		var res usecase.CheckoutResult
		decodeBody(t, rec, &res)
		if res.State != domain.CheckoutStateFailed {
			t.Fatalf("state = %s", res.State)
		}
	})
}

func TestPaymentCallbacks(t *testing.T) {
	startHosted := func(t *testing.T, f *fixture) {
		t.Helper()
		f.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":"p1","quantity":2}`)
		f.do(t, http.MethodPut, "/api/v1/cart/payment-method", `{"method":"hosted"}`)
		rec := f.do(t, http.MethodPost, "/api/v1/checkout", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("checkout status = %d, body = %s", rec.Code, rec.Body)
		}
	}

	t.Run("success finalizes the order", func(t *testing.T) {
		f := newFixture()
		startHosted(t, f)

		rec := f.do(t, http.MethodGet, "/payment/success?session_id=cs_test", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
		var res usecase.CheckoutResult
		decodeBody(t, rec, &res)
		if res.State != domain.CheckoutStateCompleted {
			t.Fatalf("state = %s", res.State)
		}

		cart, _ := f.store.Get("u1")
		if !cart.IsEmpty() {
			t.Fatal("cart must be cleared after confirmation")
		}
	})

	t.Run("success without a pending session maps to 409", func(t *testing.T) {
		f := newFixture()

		rec := f.do(t, http.MethodGet, "/payment/success", "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("mismatched session id maps to 409", func(t *testing.T) {
		f := newFixture()
		startHosted(t, f)

		rec := f.do(t, http.MethodGet, "/payment/success?session_id=cs_other", "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("failure leaves the cart for a retry", func(t *testing.T) {
		f := newFixture()
		startHosted(t, f)

		rec := f.do(t, http.MethodGet, "/payment/failed?session_id=cs_test", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var res usecase.CheckoutResult
		decodeBody(t, rec, &res)
		if res.State != domain.CheckoutStateFailed {
			t.Fatalf("state = %s", res.State)
		}

		cart, _ := f.store.Get("u1")
		if cart.IsEmpty() {
			t.Fatal("cart must survive a failed payment")
		}
	})
}
