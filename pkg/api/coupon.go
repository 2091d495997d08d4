package api

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/oakmart/storefront-go/pkg/types"
)

const couponValidatePath = "/api/v1/coupons/validate"

type validateCouponRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CouponValidation is the backend's verdict on a coupon code. A business
// rejection (expired, ineligible) arrives as valid=false with a detail
// string, not as an HTTP error.
type CouponValidation struct {
	Valid          bool            `json:"valid"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Coupon         types.Coupon    `json:"coupon"`
	Detail         string          `json:"detail,omitempty"`
}

// ValidateCoupon checks a code against the given subtotal.
func (c *Client) ValidateCoupon(ctx context.Context, code string, subtotal decimal.Decimal) (*CouponValidation, error) {
	var result CouponValidation
	body := validateCouponRequest{Code: code, Subtotal: subtotal}
	if err := c.do(ctx, "validate_coupon", http.MethodPost, couponValidatePath, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
