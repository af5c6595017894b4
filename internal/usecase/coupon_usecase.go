package usecase

import (
	"context"
	"strings"
	"time"

	"partshub-backend/internal/domain"
)

// CouponUsecase validates coupon codes against the registry and applies
// the resulting discount rule to the session cart. Applying a second code
// replaces the first; re-applying the code already on the cart is
// idempotent and does not re-increment usage.
type CouponUsecase struct {
	store   domain.CartStore
	coupons domain.CouponRepository
	taxRate float64
	rushFee float64

	// now is swappable for tests.
	now func() time.Time
}

func NewCouponUsecase(store domain.CartStore, coupons domain.CouponRepository, taxRate, rushFee float64) *CouponUsecase {
	return &CouponUsecase{
		store:   store,
		coupons: coupons,
		taxRate: taxRate,
		rushFee: rushFee,
		now:     time.Now,
	}
}

// ApplyCoupon validates the code and stores its discount rule on the cart.
// Validation order: existence, validity window, usage limit. The usage
// count is incremented exactly once per newly applied code, atomically, so
// a concurrent rush on the same code cannot overrun the limit.
func (u *CouponUsecase) ApplyCoupon(ctx context.Context, sessionID, code string) (*domain.Cart, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	cart, ok := u.store.Get(sessionID)
	if !ok {
		cart = domain.NewCart(sessionID)
	}

	// Same code again: re-validate but keep usage count untouched.
	already := cart.Coupon != nil && cart.Coupon.Code == code

	coupon, err := u.coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	now := u.now()
	if !coupon.ValidAt(now) {
		return nil, domain.ErrCouponExpired
	}
	if coupon.Exhausted() {
		return nil, domain.ErrCouponExhausted
	}

	if !already {
		if err := u.coupons.IncrementUsage(ctx, coupon.ID); err != nil {
			return nil, err
		}
	}

	cart.Coupon = &domain.AppliedCoupon{
		Code:  coupon.Code,
		Type:  coupon.Type,
		Value: coupon.Value,
	}
	cart.Recompute(u.taxRate, u.rushFee)
	u.store.Put(cart)
	u.store.Flash(sessionID, "coupon", "Coupon applied successfully!")

	return cart, nil
}
