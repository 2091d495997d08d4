package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	pkgerrors "github.com/oakmart/storefront-go/pkg/errors"
	"github.com/oakmart/storefront-go/pkg/types"
)

const cartPath = "/api/v1/cart"

type addItemRequest struct {
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int       `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart loads the current cart for the active identity. A backend 404
// means no cart exists yet and is not an error.
func (c *Client) GetCart(ctx context.Context) (*types.Cart, error) {
	var cart types.Cart
	err := c.do(ctx, "get_cart", http.MethodGet, cartPath, nil, &cart)
	if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddCartItem adds a variant to the cart and returns the full updated cart.
func (c *Client) AddCartItem(ctx context.Context, variantID uuid.UUID, quantity int) (*types.Cart, error) {
	var cart types.Cart
	body := addItemRequest{VariantID: variantID, Quantity: quantity}
	err := c.do(ctx, "add_cart_item", http.MethodPost, cartPath+"/items", body, &cart)
	if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeVariantNotFound, err, "variant not found")
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateCartItem changes a line's quantity and returns the backend's full
// cart. The cart store discards this payload on its optimistic path.
func (c *Client) UpdateCartItem(ctx context.Context, itemID uuid.UUID, quantity int) (*types.Cart, error) {
	var cart types.Cart
	path := fmt.Sprintf("%s/items/%s", cartPath, itemID)
	if err := c.do(ctx, "update_cart_item", http.MethodPatch, path, updateItemRequest{Quantity: quantity}, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveCartItem deletes a line and returns the full updated cart.
func (c *Client) RemoveCartItem(ctx context.Context, itemID uuid.UUID) (*types.Cart, error) {
	var cart types.Cart
	path := fmt.Sprintf("%s/items/%s", cartPath, itemID)
	if err := c.do(ctx, "remove_cart_item", http.MethodDelete, path, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}
