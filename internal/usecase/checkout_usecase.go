package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"partshub-backend/internal/domain"
	"partshub-backend/pkg/logger"
)

// CheckoutResult tells the caller which state the checkout landed in and
// where to send the shopper next.
type CheckoutResult struct {
	State          string `json:"state"`
	OrderID        string `json:"orderId,omitempty"`
	RedirectURL    string `json:"redirectUrl,omitempty"`
	InvoicePending bool   `json:"invoicePending,omitempty"`
	Message        string `json:"message,omitempty"`
}

// CheckoutUsecase drives the two-branch checkout flow: cash-on-delivery
// finalizes immediately, the hosted branch creates a gateway session and
// waits for the payment callback before finalizing.
type CheckoutUsecase struct {
	store     domain.CartStore
	addresses domain.AddressRepository
	gateway   domain.PaymentGateway
	notifier  domain.Notifier
	archiver  domain.InvoiceArchiver
	outbox    domain.FulfillmentOutbox

	taxRate        float64
	rushFee        float64
	currency       string
	successURL     string
	cancelURL      string
	gatewayTimeout time.Duration
}

func NewCheckoutUsecase(
	store domain.CartStore,
	addresses domain.AddressRepository,
	gateway domain.PaymentGateway,
	notifier domain.Notifier,
	archiver domain.InvoiceArchiver,
	outbox domain.FulfillmentOutbox,
	taxRate, rushFee float64,
	currency, successURL, cancelURL string,
	gatewayTimeout time.Duration,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		store:          store,
		addresses:      addresses,
		gateway:        gateway,
		notifier:       notifier,
		archiver:       archiver,
		outbox:         outbox,
		taxRate:        taxRate,
		rushFee:        rushFee,
		currency:       currency,
		successURL:     successURL,
		cancelURL:      cancelURL,
		gatewayTimeout: gatewayTimeout,
	}
}

// ProceedToCheckout runs the checkout state machine for the shopper's
// session cart. It fails before any gateway call when no shipping address
// is selected, and never clears the cart on the hosted branch until the
// payment is confirmed.
func (u *CheckoutUsecase) ProceedToCheckout(ctx context.Context, user *domain.User) (*CheckoutResult, error) {
	cart, ok := u.store.Get(user.ID)
	if !ok || cart.IsEmpty() {
		return nil, domain.ErrCartEmpty
	}
	cart.Recompute(u.taxRate, u.rushFee)

	addr, err := u.resolveAddress(ctx, user.ID, cart)
	if err != nil {
		return nil, fmt.Errorf("resolve address: %w", err)
	}
	if addr == nil {
		return &CheckoutResult{
			State:   domain.CheckoutStateAddressRequired,
			Message: "Please select or add a shipping address.",
		}, domain.ErrAddressRequired
	}

	if cart.PaymentMethod == domain.PaymentMethodCOD {
		res := u.finalize(ctx, user, cart, addr)
		u.store.Flash(user.ID, "order", "Your Cash on Delivery order has been placed successfully.")
		return res, nil
	}

	return u.startHostedPayment(ctx, user, cart)
}

func (u *CheckoutUsecase) startHostedPayment(ctx context.Context, user *domain.User, cart *domain.Cart) (*CheckoutResult, error) {
	items := make([]domain.CheckoutLineItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, domain.CheckoutLineItem{
			Currency: u.currency,
			Amount:   domain.MinorUnits(item.UnitPrice),
			Name:     item.Name,
			Quantity: item.Quantity,
		})
	}

	gwCtx, cancel := context.WithTimeout(ctx, u.gatewayTimeout)
	defer cancel()

	session, err := u.gateway.CreateCheckoutSession(gwCtx, items, u.successURL, u.cancelURL)
	if err != nil {
		// Timeouts are reported separately from rejections for
		// observability; both land in the failed state and the shopper
		// retries manually.
		failure := domain.ErrGatewayFailed
		if errors.Is(err, context.DeadlineExceeded) {
			failure = domain.ErrGatewayTimeout
		}
		logger.Error().Err(err).Str("user_id", user.ID).Msg("checkout session creation failed")
		u.store.Flash(user.ID, "checkout", "Unable to process payment. Please try again later.")
		return &CheckoutResult{
			State:       domain.CheckoutStateFailed,
			RedirectURL: u.cancelURL,
		}, failure
	}

	cart.Pending = &domain.PendingPayment{
		SessionID:   session.ID,
		CheckoutURL: session.CheckoutURL,
	}
	u.store.Put(cart)

	return &CheckoutResult{
		State:       domain.CheckoutStateHostedPayment,
		RedirectURL: session.CheckoutURL,
	}, nil
}

// HandlePaymentConfirmed consumes the PaymentConfirmed event raised by the
// gateway's success redirect and finalizes the pending order: invoice
// dispatch, archive, then cart clear. The cart is cleared even when the
// invoice dispatch fails; that failure is made durable in the fulfillment
// outbox and surfaced as invoicePending instead of being dropped.
func (u *CheckoutUsecase) HandlePaymentConfirmed(ctx context.Context, user *domain.User, ev domain.PaymentConfirmed) (*CheckoutResult, error) {
	cart, ok := u.store.Get(user.ID)
	if !ok || cart.Pending == nil {
		return nil, domain.ErrPaymentSession
	}
	if ev.SessionID != "" && ev.SessionID != cart.Pending.SessionID {
		return nil, domain.ErrPaymentSession
	}
	cart.Recompute(u.taxRate, u.rushFee)

	addr, err := u.resolveAddress(ctx, user.ID, cart)
	if err != nil {
		logger.Error().Err(err).Str("user_id", user.ID).Msg("address lookup failed during finalization")
	}

	res := u.finalize(ctx, user, cart, addr)
	u.store.Flash(user.ID, "payment", "Your payment was successful.")
	return res, nil
}

// HandlePaymentFailed flashes the failure; cart, coupon and address
// selection stay intact so the shopper can retry.
func (u *CheckoutUsecase) HandlePaymentFailed(user *domain.User, ev domain.PaymentFailed) *CheckoutResult {
	u.store.Flash(user.ID, "payment", "Your payment was not successful. Please try again.")
	return &CheckoutResult{State: domain.CheckoutStateFailed}
}

// finalize dispatches the invoice, archives it, and clears the cart. The
// clear happens after the dispatch attempt regardless of its outcome.
func (u *CheckoutUsecase) finalize(ctx context.Context, user *domain.User, cart *domain.Cart, addr *domain.Address) *CheckoutResult {
	orderID := uuid.NewString()
	invoicePending := false

	var sessionID string
	if cart.Pending != nil {
		sessionID = cart.Pending.SessionID
	}

	if addr == nil {
		// Payment is already confirmed; record the gap durably instead
		// of dropping the order on the floor.
		logger.Error().Str("user_id", user.ID).Str("order_id", orderID).Msg("no shipping address found for order")
		u.recordOutbox(ctx, sessionID, user.ID, "missing shipping address", nil)
		invoicePending = true
	} else {
		inv := &domain.Invoice{
			OrderID:         orderID,
			Recipient:       user.Email,
			Items:           cart.Items,
			Totals:          cart.Totals,
			ShippingAddress: *addr,
			PaymentMethod:   cart.PaymentMethod,
			ShippingOption:  cart.ShippingOption,
			IssuedAt:        time.Now().UTC(),
		}

		if err := u.notifier.SendInvoice(ctx, inv); err != nil {
			logger.Error().Err(err).Str("order_id", orderID).Msg("invoice dispatch failed")
			u.recordOutbox(ctx, sessionID, user.ID, "invoice dispatch failed", inv)
			invoicePending = true
		}

		if u.archiver != nil {
			if _, err := u.archiver.Archive(ctx, inv); err != nil {
				logger.Error().Err(err).Str("order_id", orderID).Msg("invoice archive failed")
			}
		}
	}

	cart.Clear()
	u.store.Put(cart)

	return &CheckoutResult{
		State:          domain.CheckoutStateCompleted,
		OrderID:        orderID,
		InvoicePending: invoicePending,
	}
}

func (u *CheckoutUsecase) recordOutbox(ctx context.Context, sessionID, userID, reason string, inv *domain.Invoice) {
	if u.outbox == nil {
		return
	}
	rec := &domain.FulfillmentRecord{
		PaymentSessionID: sessionID,
		UserID:           userID,
		Reason:           reason,
		Invoice:          inv,
	}
	if err := u.outbox.Record(ctx, rec); err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("fulfillment outbox write failed")
	}
}

// resolveAddress returns the selected address, defaulting to the first on
// record. A nil result with nil error means the shopper has no address.
func (u *CheckoutUsecase) resolveAddress(ctx context.Context, userID string, cart *domain.Cart) (*domain.Address, error) {
	addrs, err := u.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, nil
	}
	if cart.SelectedAddressID == "" {
		return &addrs[0], nil
	}
	for i := range addrs {
		if addrs[i].ID == cart.SelectedAddressID {
			return &addrs[i], nil
		}
	}
	return nil, nil
}
