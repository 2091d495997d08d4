package types

import (
	"github.com/oakmart/storefront-go/pkg/enums"
	"github.com/shopspring/decimal"
)

// Coupon carries the backend metadata for a discount code.
type Coupon struct {
	Code         string             `json:"code"`
	DiscountType enums.DiscountType `json:"discount_type"`
	Value        decimal.Decimal    `json:"value"`
	MinSubtotal  decimal.Decimal    `json:"min_subtotal"`
}

// AppliedCoupon is the currently active discount. The discount amount is
// only valid for the subtotal it was validated against; callers re-validate
// after material cart changes.
type AppliedCoupon struct {
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Coupon         Coupon          `json:"coupon"`
}
