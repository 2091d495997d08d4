package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-go/pkg/types"
)

const addressesPath = "/api/v1/addresses"

type addressListResponse struct {
	Addresses []types.SavedAddress `json:"addresses"`
}

// ListAddresses returns the authenticated user's saved addresses.
func (c *Client) ListAddresses(ctx context.Context) ([]types.SavedAddress, error) {
	var resp addressListResponse
	if err := c.do(ctx, "list_addresses", http.MethodGet, addressesPath, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Addresses, nil
}

// CreateAddress stores a new address in the user's address book.
func (c *Client) CreateAddress(ctx context.Context, payload types.InlineAddress) (*types.SavedAddress, error) {
	var saved types.SavedAddress
	if err := c.do(ctx, "create_address", http.MethodPost, addressesPath, payload, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateAddress replaces the stored fields of an existing address.
func (c *Client) UpdateAddress(ctx context.Context, addressID uuid.UUID, payload types.InlineAddress) (*types.SavedAddress, error) {
	var saved types.SavedAddress
	path := fmt.Sprintf("%s/%s", addressesPath, addressID)
	if err := c.do(ctx, "update_address", http.MethodPatch, path, payload, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteAddress removes a saved address.
func (c *Client) DeleteAddress(ctx context.Context, addressID uuid.UUID) error {
	path := fmt.Sprintf("%s/%s", addressesPath, addressID)
	return c.do(ctx, "delete_address", http.MethodDelete, path, nil, nil)
}
