package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to shoppers. Handlers map these to status codes;
// none of them leaves the cart in a corrupted state.
var (
	ErrCouponNotFound  = errors.New("invalid coupon code")
	ErrCouponExpired   = errors.New("coupon is not valid at this time")
	ErrCouponExhausted = errors.New("coupon has reached its usage limit")

	ErrAddressRequired  = errors.New("a shipping address must be selected")
	ErrAddressNotFound  = errors.New("address not found")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrPaymentSession   = errors.New("no pending payment session")
	ErrGatewayFailed    = errors.New("payment gateway rejected the checkout session")
	ErrGatewayTimeout   = errors.New("payment gateway request timed out")
	ErrNotificationSend = errors.New("invoice notification could not be sent")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q is required", e.Field)
}
