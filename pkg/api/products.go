package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	pkgerrors "github.com/oakmart/storefront-go/pkg/errors"
	"github.com/oakmart/storefront-go/pkg/types"
)

const variantsPath = "/api/v1/products/variants"

// GetVariant looks up one purchasable variant by id.
func (c *Client) GetVariant(ctx context.Context, variantID uuid.UUID) (*types.Variant, error) {
	var variant types.Variant
	path := fmt.Sprintf("%s/%s", variantsPath, variantID)
	err := c.do(ctx, "get_variant", http.MethodGet, path, nil, &variant)
	if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeVariantNotFound, err, "variant not found")
	}
	if err != nil {
		return nil, err
	}
	return &variant, nil
}
