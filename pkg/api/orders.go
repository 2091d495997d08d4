package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/oakmart/storefront-go/pkg/types"
)

const ordersPath = "/api/v1/orders"

type orderListResponse struct {
	Orders []types.Order `json:"orders"`
}

// ListOrders returns the authenticated user's past orders, newest first.
func (c *Client) ListOrders(ctx context.Context) ([]types.Order, error) {
	var resp orderListResponse
	if err := c.do(ctx, "list_orders", http.MethodGet, ordersPath, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

// GetOrder fetches one order snapshot by its order number.
func (c *Client) GetOrder(ctx context.Context, orderNumber string) (*types.Order, error) {
	var order types.Order
	path := fmt.Sprintf("%s/%s", ordersPath, url.PathEscape(orderNumber))
	if err := c.do(ctx, "get_order", http.MethodGet, path, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
