package domain

import (
	"context"
	"time"
)

// Checkout states
const (
	CheckoutStateIdle            = "idle"
	CheckoutStateAddressRequired = "address_required"
	CheckoutStateCashOnDelivery  = "cash_on_delivery"
	CheckoutStateHostedPayment   = "hosted_payment"
	CheckoutStateCompleted       = "completed"
	CheckoutStateFailed          = "failed"
)

// PaymentConfirmed is the event the gateway's success redirect resolves
// to. It drives the finalization transition instead of the HTTP callback
// poking at cart internals directly.
type PaymentConfirmed struct {
	SessionID string `json:"sessionId"`
}

// PaymentFailed is the event behind the gateway's failure redirect. The
// cart and address selection are left untouched so the shopper can retry.
type PaymentFailed struct {
	SessionID string `json:"sessionId"`
}

// CheckoutLineItem is one gateway payload line: integer minor-unit amount,
// currency fixed per deployment.
type CheckoutLineItem struct {
	Currency    string `json:"currency"`
	Amount      int64  `json:"amount"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
}

// GatewaySession is a hosted checkout session created at the payment
// provider.
type GatewaySession struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkoutUrl"`
}

type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, items []CheckoutLineItem, successURL, cancelURL string) (*GatewaySession, error)
}

// Invoice carries everything the order confirmation message needs.
type Invoice struct {
	OrderID         string     `json:"orderId"`
	Recipient       string     `json:"recipient"`
	Items           []LineItem `json:"items"`
	Totals          Totals     `json:"totals"`
	ShippingAddress Address    `json:"shippingAddress"`
	PaymentMethod   string     `json:"paymentMethod"`
	ShippingOption  string     `json:"shippingOption"`
	IssuedAt        time.Time  `json:"issuedAt"`
}

type Notifier interface {
	SendInvoice(ctx context.Context, inv *Invoice) error
}

// InvoiceArchiver persists a rendered copy of the invoice to durable
// storage; failures are logged, never surfaced to the shopper.
type InvoiceArchiver interface {
	Archive(ctx context.Context, inv *Invoice) (string, error)
}

// FulfillmentRecord is the durable outbox entry written when payment is
// confirmed but the invoice could not be dispatched, so fulfillment is
// never silently dropped.
type FulfillmentRecord struct {
	ID               string    `json:"id"`
	PaymentSessionID string    `json:"paymentSessionId"`
	UserID           string    `json:"userId"`
	Reason           string    `json:"reason"`
	Invoice          *Invoice  `json:"invoice,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

type FulfillmentOutbox interface {
	Record(ctx context.Context, rec *FulfillmentRecord) error
}
