package wishlist

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	pkgerrors "github.com/oakmart/storefront-go/pkg/errors"
	"github.com/oakmart/storefront-go/pkg/logger"
	"github.com/oakmart/storefront-go/pkg/types"
)

type wishlistAPI interface {
	ListWishlist(ctx context.Context) ([]types.Variant, error)
	AddWishlistItem(ctx context.Context, variantID uuid.UUID) error
	RemoveWishlistItem(ctx context.Context, variantID uuid.UUID) error
}

type cartAdder interface {
	AddItem(ctx context.Context, variantID uuid.UUID, quantity int) (*types.Cart, error)
}

// Service keeps the saved-for-later list in sync with the backend. Writes
// go to the backend first and mutate the cache only on success.
type Service struct {
	mu       sync.Mutex
	variants []types.Variant

	api    wishlistAPI
	cart   cartAdder
	logger *logger.Logger
}

func NewService(api wishlistAPI, cart cartAdder, logg *logger.Logger) (*Service, error) {
	if api == nil {
		return nil, fmt.Errorf("wishlist api is required")
	}
	if cart == nil {
		return nil, fmt.Errorf("wishlist cart is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("wishlist logger is required")
	}
	return &Service{api: api, cart: cart, logger: logg}, nil
}

// Refresh reloads the wishlist from the backend.
func (s *Service) Refresh(ctx context.Context) ([]types.Variant, error) {
	ctx = s.logger.WithOperation(ctx, "wishlist_refresh")

	variants, err := s.api.ListWishlist(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.variants = variants
	s.mu.Unlock()
	return s.Variants(), nil
}

// Variants returns a copy of the cached wishlist.
func (s *Service) Variants() []types.Variant {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Variant, len(s.variants))
	copy(out, s.variants)
	return out
}

// Add saves a variant. Adding an already-saved variant is a no-op with no
// network call.
func (s *Service) Add(ctx context.Context, variant types.Variant) error {
	if variant.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}

	s.mu.Lock()
	if s.containsLocked(variant.ID) {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	ctx = s.logger.WithOperation(ctx, "wishlist_add")
	if err := s.api.AddWishlistItem(ctx, variant.ID); err != nil {
		return err
	}

	s.mu.Lock()
	s.variants = append(s.variants, variant)
	s.mu.Unlock()
	return nil
}

// Remove drops a variant. Removing a variant that is not saved is a no-op.
func (s *Service) Remove(ctx context.Context, variantID uuid.UUID) error {
	s.mu.Lock()
	if !s.containsLocked(variantID) {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	ctx = s.logger.WithOperation(ctx, "wishlist_remove")
	if err := s.api.RemoveWishlistItem(ctx, variantID); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.variants[:0]
	for _, variant := range s.variants {
		if variant.ID != variantID {
			kept = append(kept, variant)
		}
	}
	s.variants = kept
	s.mu.Unlock()
	return nil
}

// MoveToCart adds the saved variant to the cart and, only if that
// succeeds, removes it from the wishlist. A failed wishlist removal
// leaves the variant saved; the cart add is never undone.
func (s *Service) MoveToCart(ctx context.Context, variantID uuid.UUID) error {
	s.mu.Lock()
	if !s.containsLocked(variantID) {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "variant is not on the wishlist")
	}
	s.mu.Unlock()

	ctx = s.logger.WithOperation(ctx, "wishlist_move_to_cart")
	if _, err := s.cart.AddItem(ctx, variantID, 1); err != nil {
		return err
	}

	if err := s.Remove(ctx, variantID); err != nil {
		s.logger.Warn(ctx, "variant added to cart but wishlist removal failed")
		return err
	}
	return nil
}

// Clear drops the cache, for logout.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variants = nil
}

func (s *Service) containsLocked(variantID uuid.UUID) bool {
	for _, variant := range s.variants {
		if variant.ID == variantID {
			return true
		}
	}
	return false
}
