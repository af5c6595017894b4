package paymongo

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"partshub-backend/internal/domain"
)

// Client talks to the PayMongo hosted-checkout API. Amounts are integers
// in minor currency units; the currency is fixed per deployment.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type checkoutRequest struct {
	Data struct {
		Attributes struct {
			LineItems          []domain.CheckoutLineItem `json:"line_items"`
			PaymentMethodTypes []string                  `json:"payment_method_types"`
			SuccessURL         string                    `json:"success_url"`
			CancelURL          string                    `json:"cancel_url"`
			Description        string                    `json:"description"`
		} `json:"attributes"`
	} `json:"data"`
}

type checkoutResponse struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			CheckoutURL string `json:"checkout_url"`
		} `json:"attributes"`
	} `json:"data"`
}

// CreateCheckoutSession creates a hosted checkout session and returns the
// session id plus the URL the shopper must be redirected to. A response
// without a checkout URL counts as a gateway failure.
func (c *Client) CreateCheckoutSession(ctx context.Context, items []domain.CheckoutLineItem, successURL, cancelURL string) (*domain.GatewaySession, error) {
	var payload checkoutRequest
	payload.Data.Attributes.LineItems = items
	payload.Data.Attributes.PaymentMethodTypes = []string{"gcash"}
	payload.Data.Attributes.SuccessURL = successURL
	payload.Data.Attributes.CancelURL = cancelURL
	payload.Data.Attributes.Description = "Payment for your order"

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal checkout session: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout_sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.secretKey+":")))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkout session request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(raw))
	}

	var out checkoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode checkout response: %w", err)
	}

	if out.Data.Attributes.CheckoutURL == "" {
		return nil, fmt.Errorf("gateway response missing checkout url")
	}

	return &domain.GatewaySession{
		ID:          out.Data.ID,
		CheckoutURL: out.Data.Attributes.CheckoutURL,
	}, nil
}

var _ domain.PaymentGateway = (*Client)(nil)
