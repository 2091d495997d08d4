package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oakmart/storefront-go/pkg/enums"
	"github.com/oakmart/storefront-go/pkg/types"
)

const checkoutPath = "/api/v1/checkout"

// CheckoutRequest is the single submission assembled by the checkout
// resolver. Exactly one of AddressID and Address is set for a non-empty
// cart.
type CheckoutRequest struct {
	AddressID     *uuid.UUID           `json:"address_id,omitempty"`
	Address       *types.InlineAddress `json:"address,omitempty"`
	CouponCode    string               `json:"coupon_code,omitempty"`
	PaymentMethod enums.PaymentMethod  `json:"payment_method"`
	ShippingFee   decimal.Decimal      `json:"shipping_fee"`
	Notes         string               `json:"notes,omitempty"`
}

// SubmitCheckout drives the assembled submission to a terminal order.
// The client never retries this call on its own.
func (c *Client) SubmitCheckout(ctx context.Context, req CheckoutRequest) (*types.Order, error) {
	var order types.Order
	if err := c.do(ctx, "submit_checkout", http.MethodPost, checkoutPath, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
