package usecase

import (
	"context"
	"fmt"

	"partshub-backend/internal/domain"
)

// AddressBook lists the shopper's addresses and the current selection.
type AddressBook struct {
	Addresses  []domain.Address `json:"addresses"`
	SelectedID string           `json:"selectedAddressId,omitempty"`
}

// AddressUsecase manages the shopper's shipping addresses and which one is
// selected for checkout. Exactly one address is selected at a time,
// defaulting to the first on record.
type AddressUsecase struct {
	store     domain.CartStore
	addresses domain.AddressRepository
}

func NewAddressUsecase(store domain.CartStore, addresses domain.AddressRepository) *AddressUsecase {
	return &AddressUsecase{
		store:     store,
		addresses: addresses,
	}
}

// ListAddresses returns the address book, defaulting the selection to the
// first address when none is recorded on the session.
func (u *AddressUsecase) ListAddresses(ctx context.Context, userID string) (*AddressBook, error) {
	addrs, err := u.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}

	cart, ok := u.store.Get(userID)
	if !ok {
		cart = domain.NewCart(userID)
	}

	if cart.SelectedAddressID == "" && len(addrs) > 0 {
		cart.SelectedAddressID = addrs[0].ID
		u.store.Put(cart)
	}

	return &AddressBook{
		Addresses:  addrs,
		SelectedID: cart.SelectedAddressID,
	}, nil
}

// AddAddress validates and persists a new address, then makes it the
// selected one.
func (u *AddressUsecase) AddAddress(ctx context.Context, userID string, addr domain.Address) (*domain.Address, error) {
	addr.UserID = userID
	if err := addr.Validate(); err != nil {
		return nil, err
	}

	if err := u.addresses.Create(ctx, &addr); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}

	cart, ok := u.store.Get(userID)
	if !ok {
		cart = domain.NewCart(userID)
	}
	cart.SelectedAddressID = addr.ID
	u.store.Put(cart)
	u.store.Flash(userID, "address", "New address added successfully!")

	return &addr, nil
}

// SelectAddress switches the selection to an address the shopper owns.
func (u *AddressUsecase) SelectAddress(ctx context.Context, userID, addressID string) error {
	addrs, err := u.addresses.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list addresses: %w", err)
	}

	for _, a := range addrs {
		if a.ID == addressID {
			cart, ok := u.store.Get(userID)
			if !ok {
				cart = domain.NewCart(userID)
			}
			cart.SelectedAddressID = addressID
			u.store.Put(cart)
			return nil
		}
	}
	return domain.ErrAddressNotFound
}
