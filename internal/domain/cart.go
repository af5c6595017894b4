package domain

import "math"

// Shipping options
const (
	ShippingNormal = "normal"
	ShippingRush   = "rush"
)

// Payment methods
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodHosted = "hosted"
)

var ShippingOptions = []string{ShippingNormal, ShippingRush}
var PaymentMethods = []string{PaymentMethodCOD, PaymentMethodHosted}

// LineItem is one product/quantity pair in a cart.
type LineItem struct {
	ProductID  string  `json:"productId"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unitPrice"`
	Quantity   int     `json:"quantity"`
	CategoryID string  `json:"categoryId"`
	BrandID    string  `json:"brandId"`
}

// AppliedCoupon is the snapshot of the coupon currently on the cart.
// Only the discount rule is kept, not the registry entity, so the discount
// is always recomputed against the current subtotal.
type AppliedCoupon struct {
	Code  string  `json:"code"`
	Type  string  `json:"type"` // percentage, fixed
	Value float64 `json:"value"`
}

// PendingPayment is the gateway session awaiting shopper confirmation.
type PendingPayment struct {
	SessionID   string `json:"sessionId"`
	CheckoutURL string `json:"checkoutUrl"`
}

// Totals are derived from the line items on every mutation and never
// stored independently of their inputs.
type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	Tax         float64 `json:"tax"`
	DeliveryFee float64 `json:"deliveryFee"`
	Discount    float64 `json:"discount"`
	Total       float64 `json:"total"`
}

// Cart is the per-shopper session state. Items keep insertion order so the
// line-item display is deterministic.
type Cart struct {
	SessionID         string          `json:"sessionId"`
	Items             []LineItem      `json:"items"`
	ShippingOption    string          `json:"shippingOption"`
	PaymentMethod     string          `json:"paymentMethod"`
	SelectedAddressID string          `json:"selectedAddressId,omitempty"`
	Coupon            *AppliedCoupon  `json:"coupon,omitempty"`
	Pending           *PendingPayment `json:"pendingPayment,omitempty"`
	Totals            Totals          `json:"totals"`
}

// NewCart returns an empty cart with default selections.
func NewCart(sessionID string) *Cart {
	return &Cart{
		SessionID:      sessionID,
		ShippingOption: ShippingNormal,
		PaymentMethod:  PaymentMethodCOD,
	}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Item returns a pointer into the items slice, valid until the next mutation.
func (c *Cart) Item(productID string) (*LineItem, bool) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// UpsertItem adds quantity to an existing line or appends a new one at the
// end, keeping insertion order. Quantities below 1 are clamped to 1.
func (c *Cart) UpsertItem(item LineItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if existing, ok := c.Item(item.ProductID); ok {
		existing.Quantity += item.Quantity
		return
	}
	c.Items = append(c.Items, item)
}

// UpdateQuantity sets the quantity of a line item, clamping to a minimum
// of 1. Returns false when the product is not in the cart.
func (c *Cart) UpdateQuantity(productID string, quantity int) bool {
	item, ok := c.Item(productID)
	if !ok {
		return false
	}
	if quantity < 1 {
		quantity = 1
	}
	item.Quantity = quantity
	return true
}

// RemoveItem deletes a line item. Removing an absent product is a no-op.
func (c *Cart) RemoveItem(productID string) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear resets line items, coupon, pending payment and totals after a
// successful order. The address selection survives so a returning shopper
// keeps their default.
func (c *Cart) Clear() {
	c.Items = nil
	c.Coupon = nil
	c.Pending = nil
	c.Totals = Totals{}
}

// Recompute derives totals from the current line items, shipping option
// and coupon snapshot. The discount is clamped so the total never goes
// negative.
func (c *Cart) Recompute(taxRate, rushFee float64) {
	var subtotal float64
	for _, item := range c.Items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}
	subtotal = Round2(subtotal)

	tax := Round2(subtotal * taxRate)

	var fee float64
	if c.ShippingOption == ShippingRush {
		fee = rushFee
	}

	var discount float64
	if c.Coupon != nil {
		if c.Coupon.Type == "percentage" {
			discount = Round2(subtotal * c.Coupon.Value / 100)
		} else {
			discount = c.Coupon.Value
		}
		if max := subtotal + tax + fee; discount > max {
			discount = max
		}
	}

	total := Round2(subtotal + tax + fee - discount)
	if total < 0 {
		total = 0
	}

	c.Totals = Totals{
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: fee,
		Discount:    discount,
		Total:       total,
	}
}

// DistinctCategoryIDs returns the unique category ids across line items,
// in first-seen order.
func (c *Cart) DistinctCategoryIDs() []string {
	return distinct(c.Items, func(i LineItem) string { return i.CategoryID })
}

// DistinctBrandIDs returns the unique brand ids across line items.
func (c *Cart) DistinctBrandIDs() []string {
	return distinct(c.Items, func(i LineItem) string { return i.BrandID })
}

// ProductIDs returns the ids of all line items in display order.
func (c *Cart) ProductIDs() []string {
	ids := make([]string, len(c.Items))
	for i, item := range c.Items {
		ids[i] = item.ProductID
	}
	return ids
}

func distinct(items []LineItem, key func(LineItem) string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		k := key(item)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Round2 rounds half away from zero to 2 decimals. Applied uniformly to
// tax, percentage discounts and totals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MinorUnits converts a currency amount to integer minor units (cents)
// for gateway transmission.
func MinorUnits(v float64) int64 {
	return int64(math.Round(v * 100))
}

// CartStore is the session-scoped persistence for carts, plus one-read
// flash values for UI banners.
type CartStore interface {
	Get(sessionID string) (*Cart, bool)
	Put(cart *Cart)
	Delete(sessionID string)
	Flash(sessionID, key, value string)
	PopFlash(sessionID string) map[string]string
}
