package address

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	pkgerrors "github.com/oakmart/storefront-go/pkg/errors"
	"github.com/oakmart/storefront-go/pkg/logger"
	"github.com/oakmart/storefront-go/pkg/types"
)

type addressAPI interface {
	ListAddresses(ctx context.Context) ([]types.SavedAddress, error)
	CreateAddress(ctx context.Context, payload types.InlineAddress) (*types.SavedAddress, error)
	UpdateAddress(ctx context.Context, addressID uuid.UUID, payload types.InlineAddress) (*types.SavedAddress, error)
	DeleteAddress(ctx context.Context, addressID uuid.UUID) error
}

// Book caches the authenticated user's saved addresses and tracks which
// one is selected for checkout. The backend owns the data; the cache is
// refreshed whole after every write.
type Book struct {
	mu       sync.Mutex
	saved    []types.SavedAddress
	selected uuid.UUID

	api    addressAPI
	logger *logger.Logger
}

func NewBook(api addressAPI, logg *logger.Logger) (*Book, error) {
	if api == nil {
		return nil, fmt.Errorf("address api is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("address book logger is required")
	}
	return &Book{api: api, logger: logg}, nil
}

// Refresh reloads the address book. The selection is kept if the selected
// address still exists, otherwise it falls back to the default address.
func (b *Book) Refresh(ctx context.Context) ([]types.SavedAddress, error) {
	ctx = b.logger.WithOperation(ctx, "address_refresh")

	saved, err := b.api.ListAddresses(ctx)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.saved = saved
	if !b.selectionExistsLocked() {
		b.selected = uuid.Nil
		for _, addr := range saved {
			if addr.IsDefault {
				b.selected = addr.ID
				break
			}
		}
	}
	b.mu.Unlock()

	return b.Addresses(), nil
}

// Addresses returns a copy of the cached address list.
func (b *Book) Addresses() []types.SavedAddress {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]types.SavedAddress, len(b.saved))
	copy(out, b.saved)
	return out
}

// Select marks a cached address as the checkout choice.
func (b *Book) Select(addressID uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, addr := range b.saved {
		if addr.ID == addressID {
			b.selected = addressID
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "address is not in the address book")
}

// Selected returns the id of the currently selected address, or nil when
// nothing is selected.
func (b *Book) Selected() *uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.selected == uuid.Nil {
		return nil
	}
	id := b.selected
	return &id
}

// Create stores a new address and refreshes the cache.
func (b *Book) Create(ctx context.Context, payload types.InlineAddress) (*types.SavedAddress, error) {
	ctx = b.logger.WithOperation(ctx, "address_create")

	saved, err := b.api.CreateAddress(ctx, payload)
	if err != nil {
		return nil, err
	}
	if _, err := b.Refresh(ctx); err != nil {
		b.logger.Warn(ctx, "address created but refresh failed")
	}
	return saved, nil
}

// Update replaces a stored address and refreshes the cache.
func (b *Book) Update(ctx context.Context, addressID uuid.UUID, payload types.InlineAddress) (*types.SavedAddress, error) {
	ctx = b.logger.WithOperation(ctx, "address_update")

	saved, err := b.api.UpdateAddress(ctx, addressID, payload)
	if err != nil {
		return nil, err
	}
	if _, err := b.Refresh(ctx); err != nil {
		b.logger.Warn(ctx, "address updated but refresh failed")
	}
	return saved, nil
}

// Delete removes a stored address. Deleting the selected address clears
// the selection.
func (b *Book) Delete(ctx context.Context, addressID uuid.UUID) error {
	ctx = b.logger.WithOperation(ctx, "address_delete")

	if err := b.api.DeleteAddress(ctx, addressID); err != nil {
		return err
	}

	b.mu.Lock()
	kept := b.saved[:0]
	for _, addr := range b.saved {
		if addr.ID != addressID {
			kept = append(kept, addr)
		}
	}
	b.saved = kept
	if b.selected == addressID {
		b.selected = uuid.Nil
	}
	b.mu.Unlock()
	return nil
}

// Clear drops the cache and selection, for logout.
func (b *Book) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saved = nil
	b.selected = uuid.Nil
}

func (b *Book) selectionExistsLocked() bool {
	if b.selected == uuid.Nil {
		return false
	}
	for _, addr := range b.saved {
		if addr.ID == b.selected {
			return true
		}
	}
	return false
}
