package types

import (
	"github.com/google/uuid"
	"github.com/oakmart/storefront-go/pkg/enums"
	"github.com/shopspring/decimal"
)

// CartItem is one line within a cart: a product variant, its quantity, and
// the line price snapshot. Quantity never drops below one; driving it to
// zero removes the line instead.
type CartItem struct {
	ID        uuid.UUID       `json:"id"`
	VariantID uuid.UUID       `json:"variant_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// RecomputeLineTotal re-derives line_total from unit_price and quantity.
func (i *CartItem) RecomputeLineTotal() {
	i.LineTotal = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the server-tracked collection of line items for one identity.
// Subtotal and item count are always re-derived locally from the item list,
// never trusted from a backend aggregate.
type Cart struct {
	ID        uuid.UUID       `json:"id"`
	Status    enums.CartStatus `json:"status"`
	Items     []CartItem      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"item_count"`
}

// Recompute re-derives the cart aggregates from the item list.
func (c *Cart) Recompute() {
	subtotal := decimal.Zero
	count := 0
	for i := range c.Items {
		c.Items[i].RecomputeLineTotal()
		subtotal = subtotal.Add(c.Items[i].LineTotal)
		count += c.Items[i].Quantity
	}
	c.Subtotal = subtotal
	c.ItemCount = count
}

// Item returns a pointer to the line with the given id, or nil.
func (c *Cart) Item(itemID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Clone returns a deep copy safe to hand to callers.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Items = make([]CartItem, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}
