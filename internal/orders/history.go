package orders

import (
	"context"
	"fmt"
	"strings"
	"sync"

	pkgerrors "github.com/oakmart/storefront-go/pkg/errors"
	"github.com/oakmart/storefront-go/pkg/logger"
	"github.com/oakmart/storefront-go/pkg/types"
)

type orderAPI interface {
	ListOrders(ctx context.Context) ([]types.Order, error)
	GetOrder(ctx context.Context, orderNumber string) (*types.Order, error)
}

// History is a read-through view of the user's past orders. Orders are
// immutable once placed, so fetched snapshots are cached for the session.
type History struct {
	mu       sync.Mutex
	byNumber map[string]types.Order
	listing  []string

	api    orderAPI
	logger *logger.Logger
}

func NewHistory(api orderAPI, logg *logger.Logger) (*History, error) {
	if api == nil {
		return nil, fmt.Errorf("order api is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("order history logger is required")
	}
	return &History{
		byNumber: make(map[string]types.Order),
		api:      api,
		logger:   logg,
	}, nil
}

// Refresh reloads the order listing from the backend.
func (h *History) Refresh(ctx context.Context) ([]types.Order, error) {
	ctx = h.logger.WithOperation(ctx, "orders_refresh")

	fetched, err := h.api.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.listing = make([]string, 0, len(fetched))
	for _, order := range fetched {
		h.byNumber[order.OrderNumber] = order
		h.listing = append(h.listing, order.OrderNumber)
	}
	h.mu.Unlock()

	return h.Orders(), nil
}

// Orders returns the cached listing in backend order.
func (h *History) Orders() []types.Order {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]types.Order, 0, len(h.listing))
	for _, number := range h.listing {
		out = append(out, h.byNumber[number])
	}
	return out
}

// Get returns one order, from cache when possible.
func (h *History) Get(ctx context.Context, orderNumber string) (*types.Order, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}

	h.mu.Lock()
	if order, ok := h.byNumber[orderNumber]; ok {
		h.mu.Unlock()
		return &order, nil
	}
	h.mu.Unlock()

	ctx = h.logger.WithOperation(ctx, "orders_get")
	order, err := h.api.GetOrder(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.byNumber[order.OrderNumber] = *order
	h.mu.Unlock()
	return order, nil
}

// Record caches a freshly placed order so it shows up without a refresh.
func (h *History) Record(order types.Order) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.byNumber[order.OrderNumber]; !ok {
		h.listing = append([]string{order.OrderNumber}, h.listing...)
	}
	h.byNumber[order.OrderNumber] = order
}

// Clear drops the cache, for logout.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byNumber = make(map[string]types.Order)
	h.listing = nil
}
