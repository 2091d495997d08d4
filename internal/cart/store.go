package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/oakmart/storefront-go/pkg/errors"
	"github.com/oakmart/storefront-go/pkg/logger"
	"github.com/oakmart/storefront-go/pkg/types"
)

// State is the cart store lifecycle: Empty → Loading → Ready on first
// fetch, Ready → Mutating → Ready around each item mutation, any state →
// Error on an unrecoverable fetch failure, recovered by the next fetch.
type State string

const (
	StateEmpty    State = "empty"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateMutating State = "mutating"
	StateError    State = "error"
)

type backendAPI interface {
	GetCart(ctx context.Context) (*types.Cart, error)
	AddCartItem(ctx context.Context, variantID uuid.UUID, quantity int) (*types.Cart, error)
	UpdateCartItem(ctx context.Context, itemID uuid.UUID, quantity int) (*types.Cart, error)
	RemoveCartItem(ctx context.Context, itemID uuid.UUID) (*types.Cart, error)
}

// Store is the single authoritative in-memory cart. All line mutations go
// through it. Mutations are individually optimistic-then-reconcile
// transactions; distinct operations racing on the same line are best
// effort, not linearizable.
type Store struct {
	mu       sync.Mutex
	state    State
	cart     *types.Cart
	fetching bool
	api      backendAPI
	logger   *logger.Logger
}

// NewStore builds a cart store backed by the commerce API client.
func NewStore(api backendAPI, logg *logger.Logger) (*Store, error) {
	if api == nil {
		return nil, fmt.Errorf("cart backend api required")
	}
	if logg == nil {
		return nil, fmt.Errorf("cart logger required")
	}
	return &Store{
		state:  StateEmpty,
		api:    api,
		logger: logg,
	}, nil
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cart returns a deep copy of the current cart, or nil if none is loaded.
func (s *Store) Cart() *types.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Subtotal returns the locally derived subtotal, zero when no cart exists.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return decimal.Zero
	}
	return s.cart.Subtotal
}

// ItemCount returns the locally derived item count.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return 0
	}
	return s.cart.ItemCount
}

// Fetch loads the current cart for the active identity. If a fetch is
// already in flight the call is dropped, not queued, and the current
// snapshot is returned; callers who suspect a drop re-fetch explicitly.
// A backend "no cart yet" resolves to nil without error.
func (s *Store) Fetch(ctx context.Context) (*types.Cart, error) {
	s.mu.Lock()
	if s.fetching {
		snapshot := s.cart.Clone()
		s.mu.Unlock()
		s.logger.Info(s.logger.WithOperation(ctx, "fetch_cart"), "fetch already in flight, dropping call")
		return snapshot, nil
	}
	s.fetching = true
	s.state = StateLoading
	s.mu.Unlock()

	cart, err := s.api.GetCart(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetching = false
	if err != nil {
		s.state = StateError
		return nil, err
	}
	if cart == nil {
		s.cart = nil
		s.state = StateEmpty
		return nil, nil
	}
	cart.Recompute()
	s.cart = cart
	s.state = StateReady
	return s.cart.Clone(), nil
}

// AddItem sends the add to the backend and replaces the whole local cart
// with the returned one. There is no optimistic path here: the backend
// decides merge-with-existing-line semantics. On failure the local cart is
// left unchanged.
func (s *Store) AddItem(ctx context.Context, variantID uuid.UUID, quantity int) (*types.Cart, error) {
	if variantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	s.setMutating()
	cart, err := s.api.AddCartItem(ctx, variantID, quantity)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.restoreAfterMutation()
		return nil, err
	}
	cart.Recompute()
	s.cart = cart
	s.state = StateReady
	return s.cart.Clone(), nil
}

// SetQuantity is the one deliberately optimistic operation. The local line
// is mutated synchronously before the backend round trip, with the
// pre-mutation values retained for rollback. On success the backend's
// returned cart is intentionally discarded: local price arithmetic stays
// authoritative for this operation to avoid visible flicker. On failure
// the retained values are restored and the error is propagated.
func (s *Store) SetQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	if quantity < 1 {
		// A quantity update to zero or below is removal, not a zero line.
		return s.RemoveItem(ctx, itemID)
	}

	s.mu.Lock()
	if s.cart == nil {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "no cart loaded")
	}
	item := s.cart.Item(itemID)
	if item == nil {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}

	prevQuantity := item.Quantity
	prevLineTotal := item.LineTotal

	item.Quantity = quantity
	item.RecomputeLineTotal()
	s.cart.Recompute()
	s.state = StateMutating
	s.mu.Unlock()

	_, err := s.api.UpdateCartItem(ctx, itemID, quantity)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateReady
	if err == nil {
		return nil
	}

	// Roll back to this call's own captured values. The line may have been
	// removed by a racing operation; then there is nothing to restore.
	if s.cart != nil {
		if item := s.cart.Item(itemID); item != nil {
			item.Quantity = prevQuantity
			item.LineTotal = prevLineTotal
			s.cart.Recompute()
		}
	}
	return err
}

// RemoveItem deletes a line server-side and replaces the local cart with
// the backend's returned cart. On failure the local cart is unchanged.
func (s *Store) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	s.mu.Lock()
	if s.cart == nil || s.cart.Item(itemID) == nil {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	s.state = StateMutating
	s.mu.Unlock()

	cart, err := s.api.RemoveCartItem(ctx, itemID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.restoreAfterMutation()
		return err
	}
	cart.Recompute()
	s.cart = cart
	s.state = StateReady
	return nil
}

// MergeOnLogin refreshes the local view exactly once after a successful
// login. The backend owns guest-to-user cart reconciliation; the new
// identity's credentials are already attached at the transport layer.
func (s *Store) MergeOnLogin(ctx context.Context) error {
	ctx = s.logger.WithOperation(ctx, "merge_on_login")
	s.logger.Info(ctx, "refreshing cart under authenticated identity")

	cart, err := s.api.GetCart(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateError
		return err
	}
	if cart == nil {
		s.cart = nil
		s.state = StateEmpty
		return nil
	}
	cart.Recompute()
	s.cart = cart
	s.state = StateReady
	return nil
}

// Reset discards the local cart reference, e.g. after checkout converts it
// or on logout. The next fetch starts from Empty.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = nil
	s.state = StateEmpty
}

func (s *Store) setMutating() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateMutating
}

// restoreAfterMutation is called with the lock held after a failed
// server-authoritative mutation: the local cart was never touched, only
// the state flag needs to settle.
func (s *Store) restoreAfterMutation() {
	if s.cart == nil {
		s.state = StateEmpty
		return
	}
	s.state = StateReady
}
