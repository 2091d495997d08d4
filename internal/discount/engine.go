package discount

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/oakmart/storefront-go/pkg/api"
	pkgerrors "github.com/oakmart/storefront-go/pkg/errors"
	"github.com/oakmart/storefront-go/pkg/logger"
	"github.com/oakmart/storefront-go/pkg/types"
)

type couponAPI interface {
	ValidateCoupon(ctx context.Context, code string, subtotal decimal.Decimal) (*api.CouponValidation, error)
}

// Engine validates and tracks at most one applied coupon against the
// subtotal it was validated against. A coupon is not re-validated when the
// subtotal drifts afterward; callers re-apply after material cart changes.
type Engine struct {
	mu      sync.Mutex
	applied *types.AppliedCoupon
	api     couponAPI
	logger  *logger.Logger
}

// NewEngine builds a discount engine backed by the commerce API client.
func NewEngine(api couponAPI, logg *logger.Logger) (*Engine, error) {
	if api == nil {
		return nil, fmt.Errorf("coupon api required")
	}
	if logg == nil {
		return nil, fmt.Errorf("discount logger required")
	}
	return &Engine{api: api, logger: logg}, nil
}

// Apply validates a code against the given subtotal. Empty codes and
// non-positive subtotals are rejected locally without a network call. A
// backend business rejection or a transport failure clears any applied
// coupon. Applying a new code while one is active replaces it; the last
// validation wins.
func (e *Engine) Apply(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeEmptyCode, "coupon code is required")
	}
	if !subtotal.IsPositive() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeEmptySubtotal, "subtotal must be positive")
	}

	result, err := e.api.ValidateCoupon(ctx, normalized, subtotal)
	if err != nil {
		e.clear()
		return decimal.Zero, err
	}
	if !result.Valid {
		e.clear()
		reason := result.Detail
		if reason == "" {
			reason = "coupon is not valid"
		}
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeCouponInvalid, reason)
	}

	e.mu.Lock()
	e.applied = &types.AppliedCoupon{
		Code:           normalized,
		DiscountAmount: result.DiscountAmount,
		Subtotal:       subtotal,
		Coupon:         result.Coupon,
	}
	e.mu.Unlock()

	e.logger.Info(e.logger.WithOperation(ctx, "apply_coupon"), "coupon applied")
	return result.DiscountAmount, nil
}

// Remove clears the applied coupon locally. No network call: the backend
// reconfirms eligibility fresh on the next checkout attempt. Safe to call
// any number of times.
func (e *Engine) Remove() {
	e.clear()
}

// Applied returns a copy of the active coupon, or nil.
func (e *Engine) Applied() *types.AppliedCoupon {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.applied == nil {
		return nil
	}
	cp := *e.applied
	return &cp
}

// DiscountAmount returns the active discount, zero when no coupon applies.
func (e *Engine) DiscountAmount() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.applied == nil {
		return decimal.Zero
	}
	return e.applied.DiscountAmount
}

func (e *Engine) clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applied = nil
}
