package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/oakmart/storefront-go/pkg/enums"
	"github.com/shopspring/decimal"
)

// OrderLine is a price/quantity snapshot taken at purchase time.
type OrderLine struct {
	VariantID uuid.UUID       `json:"variant_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Order is the terminal artifact of a checkout. The backend owns it; the
// client treats it as immutable once returned.
type Order struct {
	OrderNumber   string              `json:"order_number"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Discount      decimal.Decimal     `json:"discount"`
	ShippingFee   decimal.Decimal     `json:"shipping_fee"`
	Total         decimal.Decimal     `json:"total"`
	Lines         []OrderLine         `json:"lines"`
	CreatedAt     time.Time           `json:"created_at"`
}
