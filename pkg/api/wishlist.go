package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-go/pkg/types"
)

const wishlistPath = "/api/v1/wishlist"

type wishlistResponse struct {
	Variants []types.Variant `json:"variants"`
}

type wishlistAddRequest struct {
	VariantID uuid.UUID `json:"variant_id"`
}

// ListWishlist returns the variants the user has saved for later.
func (c *Client) ListWishlist(ctx context.Context) ([]types.Variant, error) {
	var resp wishlistResponse
	if err := c.do(ctx, "list_wishlist", http.MethodGet, wishlistPath, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Variants, nil
}

// AddWishlistItem saves a variant to the wishlist.
func (c *Client) AddWishlistItem(ctx context.Context, variantID uuid.UUID) error {
	return c.do(ctx, "add_wishlist_item", http.MethodPost, wishlistPath, wishlistAddRequest{VariantID: variantID}, nil)
}

// RemoveWishlistItem drops a variant from the wishlist.
func (c *Client) RemoveWishlistItem(ctx context.Context, variantID uuid.UUID) error {
	path := fmt.Sprintf("%s/%s", wishlistPath, variantID)
	return c.do(ctx, "remove_wishlist_item", http.MethodDelete, path, nil, nil)
}
