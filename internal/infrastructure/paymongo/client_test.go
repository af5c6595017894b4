package paymongo

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"partshub-backend/internal/domain"
)

func testItems() []domain.CheckoutLineItem {
	return []domain.CheckoutLineItem{
		{Currency: "PHP", Amount: 10000, Name: "NVMe SSD 1TB", Quantity: 2},
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		var gotAuth string
		var gotBody checkoutRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/v1/checkout_sessions" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			gotAuth = r.Header.Get("Authorization")
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Errorf("decode request: %v", err)
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":{"id":"cs_123","attributes":{"checkout_url":"https://pay.example/cs_123"}}}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "sk_test_abc", 5*time.Second)
		session, err := client.CreateCheckoutSession(ctx, testItems(), "https://shop/success", "https://shop/cancel")
		if err != nil {
			t.Fatalf("CreateCheckoutSession: %v", err)
		}
		if session.ID != "cs_123" || session.CheckoutURL != "https://pay.example/cs_123" {
			t.Fatalf("session = %+v", session)
		}

		wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("sk_test_abc:"))
		if gotAuth != wantAuth {
			t.Fatalf("auth = %q, want %q", gotAuth, wantAuth)
		}

		attrs := gotBody.Data.Attributes
		if len(attrs.LineItems) != 1 || attrs.LineItems[0].Amount != 10000 {
			t.Fatalf("line items = %+v", attrs.LineItems)
		}
		if attrs.SuccessURL != "https://shop/success" || attrs.CancelURL != "https://shop/cancel" {
			t.Fatalf("urls = %q %q", attrs.SuccessURL, attrs.CancelURL)
		}
	})

	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"errors":[{"detail":"Invalid API key"}]}`, http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "sk_bad", 5*time.Second)
		if _, err := client.CreateCheckoutSession(ctx, testItems(), "s", "c"); err == nil {
			t.Fatal("expected an error for a rejected request")
		}
	})

	t.Run("missing checkout url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{"id":"cs_123","attributes":{}}}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "sk_test_abc", 5*time.Second)
		if _, err := client.CreateCheckoutSession(ctx, testItems(), "s", "c"); err == nil {
			t.Fatal("expected an error when the checkout url is absent")
		}
	})

	t.Run("context timeout propagates", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Drain the body so the server notices the client disconnect;
			// otherwise the request context is never canceled and Close hangs.
			io.Copy(io.Discard, r.Body)
			<-r.Context().Done()
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "sk_test_abc", 5*time.Second)
		ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		if _, err := client.CreateCheckoutSession(ctx, testItems(), "s", "c"); err == nil {
			t.Fatal("expected a timeout error")
		}
	})
}
