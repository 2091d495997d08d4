package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant is the purchasable unit of a product as the catalog exposes it.
type Variant struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	InStock   bool            `json:"in_stock"`
}
