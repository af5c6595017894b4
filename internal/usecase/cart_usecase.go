package usecase

import (
	"context"
	"fmt"

	"partshub-backend/internal/domain"
	"partshub-backend/pkg/logger"
)

// CartUsecase owns the session cart: line items, quantities, shipping and
// payment selections. Every mutation recomputes totals and persists the
// cart back to the session store before returning.
type CartUsecase struct {
	store    domain.CartStore
	products domain.ProductRepository
	taxRate  float64
	rushFee  float64
}

func NewCartUsecase(store domain.CartStore, products domain.ProductRepository, taxRate, rushFee float64) *CartUsecase {
	return &CartUsecase{
		store:    store,
		products: products,
		taxRate:  taxRate,
		rushFee:  rushFee,
	}
}

// GetCart loads the session cart, creating an empty one on first use.
// Totals are recomputed on load so they always reflect current inputs.
func (u *CartUsecase) GetCart(sessionID string) *domain.Cart {
	cart, ok := u.store.Get(sessionID)
	if !ok {
		cart = domain.NewCart(sessionID)
	}
	cart.Recompute(u.taxRate, u.rushFee)
	u.store.Put(cart)
	return cart
}

// AddItem resolves the product in the catalog and adds it to the cart.
func (u *CartUsecase) AddItem(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error) {
	product, err := u.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}

	cart := u.GetCart(sessionID)
	cart.UpsertItem(domain.LineItem{
		ProductID:  product.ID,
		Name:       product.Name,
		UnitPrice:  product.Price,
		Quantity:   quantity,
		CategoryID: product.CategoryID,
		BrandID:    product.BrandID,
	})
	cart.Recompute(u.taxRate, u.rushFee)
	u.store.Put(cart)
	return cart, nil
}

// UpdateQuantity sets a line item's quantity, clamping to a minimum of 1.
// Unknown product ids are a no-op.
func (u *CartUsecase) UpdateQuantity(sessionID, productID string, quantity int) *domain.Cart {
	cart := u.GetCart(sessionID)
	if cart.UpdateQuantity(productID, quantity) {
		cart.Recompute(u.taxRate, u.rushFee)
		u.store.Put(cart)
	}
	return cart
}

// RemoveItem deletes a line item; removing an absent product id changes
// nothing and reports no error.
func (u *CartUsecase) RemoveItem(sessionID, productID string) *domain.Cart {
	cart := u.GetCart(sessionID)
	if cart.RemoveItem(productID) {
		cart.Recompute(u.taxRate, u.rushFee)
		u.store.Put(cart)
		u.store.Flash(sessionID, "cart", "Item removed from cart successfully!")
	}
	return cart
}

// SetShippingOption switches between normal and rush delivery and
// recomputes the delivery fee.
func (u *CartUsecase) SetShippingOption(sessionID, option string) (*domain.Cart, error) {
	if option != domain.ShippingNormal && option != domain.ShippingRush {
		return nil, fmt.Errorf("unknown shipping option %q", option)
	}
	cart := u.GetCart(sessionID)
	cart.ShippingOption = option
	cart.Recompute(u.taxRate, u.rushFee)
	u.store.Put(cart)
	return cart, nil
}

// SetPaymentMethod selects cash-on-delivery or the hosted gateway flow.
func (u *CartUsecase) SetPaymentMethod(sessionID, method string) (*domain.Cart, error) {
	if method != domain.PaymentMethodCOD && method != domain.PaymentMethodHosted {
		return nil, fmt.Errorf("unknown payment method %q", method)
	}
	cart := u.GetCart(sessionID)
	cart.PaymentMethod = method
	u.store.Put(cart)
	return cart, nil
}

// PopFlash drains pending flash messages for the session.
func (u *CartUsecase) PopFlash(sessionID string) map[string]string {
	return u.store.PopFlash(sessionID)
}

// SelectAddress records the shopper's chosen shipping address on the
// session.
func (u *CartUsecase) SelectAddress(sessionID, addressID string) *domain.Cart {
	cart := u.GetCart(sessionID)
	cart.SelectedAddressID = addressID
	u.store.Put(cart)
	logger.Debug().Str("session_id", sessionID).Str("address_id", addressID).Msg("address selected")
	return cart
}
