package checkout

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oakmart/storefront-go/pkg/api"
	"github.com/oakmart/storefront-go/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-go/pkg/errors"
	"github.com/oakmart/storefront-go/pkg/logger"
	"github.com/oakmart/storefront-go/pkg/types"
)

type cartState interface {
	Cart() *types.Cart
	Reset()
}

type couponState interface {
	Applied() *types.AppliedCoupon
	Remove()
}

type identitySource interface {
	CurrentIdentity() enums.Identity
}

type checkoutAPI interface {
	SubmitCheckout(ctx context.Context, req api.CheckoutRequest) (*types.Order, error)
}

// Submission is the checkout form as the caller assembled it: an optional
// saved-address selection plus whatever was typed into the inline form.
type Submission struct {
	AddressID *uuid.UUID
	Address   *types.InlineAddress
	Notes     string
}

// Resolver turns cart, coupon, and address state into a single order
// submission. Payment is always cash on delivery and shipping is free, so
// neither is part of the form.
type Resolver struct {
	cart     cartState
	coupons  couponState
	identity identitySource
	api      checkoutAPI
	validate *validator.Validate
	logger   *logger.Logger
}

// NewResolver wires the checkout resolver. The coupon state is typically
// the discount engine; identity the session provider.
func NewResolver(cart cartState, coupons couponState, identity identitySource, apiClient checkoutAPI, logg *logger.Logger) (*Resolver, error) {
	if cart == nil || coupons == nil || identity == nil || apiClient == nil {
		return nil, fmt.Errorf("checkout resolver requires cart, coupon, identity, and api dependencies")
	}
	if logg == nil {
		return nil, fmt.Errorf("checkout resolver logger is required")
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Resolver{
		cart:     cart,
		coupons:  coupons,
		identity: identity,
		api:      apiClient,
		validate: validate,
		logger:   logg,
	}, nil
}

// Submit resolves the shipping address, attaches the applied coupon code,
// and posts the checkout exactly once. On success the cart and coupon
// state are cleared and the created order returned. On any failure both
// are left exactly as they were, so the shopper can fix the form or try
// again without rebuilding the cart.
func (r *Resolver) Submit(ctx context.Context, sub Submission) (*types.Order, error) {
	ctx = r.logger.WithOperation(ctx, "checkout_submit")

	cart := r.cart.Cart()
	if cart == nil || cart.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot checkout with an empty cart")
	}

	req := api.CheckoutRequest{
		PaymentMethod: enums.PaymentMethodCashOnDelivery,
		ShippingFee:   decimal.Zero,
		Notes:         strings.TrimSpace(sub.Notes),
	}

	addressID, inline, err := r.resolveAddress(sub)
	if err != nil {
		return nil, err
	}
	req.AddressID = addressID
	req.Address = inline

	if applied := r.coupons.Applied(); applied != nil {
		req.CouponCode = applied.Code
	}

	order, err := r.api.SubmitCheckout(ctx, req)
	if err != nil {
		r.logger.Error(ctx, "checkout submission failed", err)
		return nil, err
	}

	r.cart.Reset()
	r.coupons.Remove()
	r.logger.Info(r.logger.WithField(ctx, "order_number", order.OrderNumber), "checkout completed")
	return order, nil
}

// resolveAddress picks exactly one of the two address forms. A saved
// address wins when the shopper is authenticated and selected one; the
// inline form is the fallback and must pass validation in full.
func (r *Resolver) resolveAddress(sub Submission) (*uuid.UUID, *types.InlineAddress, error) {
	if sub.AddressID != nil && *sub.AddressID != uuid.Nil && r.identity.CurrentIdentity() == enums.IdentityAuthenticated {
		return sub.AddressID, nil, nil
	}

	if sub.Address == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeIncompleteAddress, "a shipping address is required")
	}

	inline := *sub.Address
	inline.Name = strings.TrimSpace(inline.Name)
	inline.Phone = strings.TrimSpace(inline.Phone)
	inline.FullAddress = strings.TrimSpace(inline.FullAddress)
	inline.Country = strings.TrimSpace(inline.Country)
	inline.District = strings.TrimSpace(inline.District)

	if err := r.validate.Struct(inline); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			fields := make([]string, 0, len(invalid))
			for _, fe := range invalid {
				fields = append(fields, fe.Field())
			}
			return nil, nil, pkgerrors.New(pkgerrors.CodeIncompleteAddress, "shipping address is incomplete").
				WithDetails(map[string][]string{"missing": fields})
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeIncompleteAddress, err, "shipping address is invalid")
	}

	return nil, &inline, nil
}
