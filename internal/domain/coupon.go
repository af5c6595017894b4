package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Coupon types
const (
	CouponTypeFixed      = "fixed"
	CouponTypePercentage = "percentage"
)

type Coupon struct {
	ID         uuid.UUID `json:"id"`
	Code       string    `json:"code"`
	Type       string    `json:"type"` // percentage, fixed
	Value      float64   `json:"value"`
	UsageLimit int       `json:"usageLimit"`
	UsedCount  int       `json:"usedCount"`
	StartAt    time.Time `json:"startAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ValidAt reports whether now falls inside the coupon's validity window.
func (c *Coupon) ValidAt(now time.Time) bool {
	return !now.Before(c.StartAt) && !now.After(c.ExpiresAt)
}

// Exhausted reports whether the usage cap has been reached.
func (c *Coupon) Exhausted() bool {
	return c.UsedCount >= c.UsageLimit
}

type CouponRepository interface {
	// GetByCode returns ErrCouponNotFound when the code is unknown.
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	// IncrementUsage bumps used_count with a compare-and-increment so the
	// usage limit cannot be overrun by concurrent shoppers. Returns
	// ErrCouponExhausted when the limit was already reached.
	IncrementUsage(ctx context.Context, id uuid.UUID) error
}
