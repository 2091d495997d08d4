package types

import "github.com/google/uuid"

// SavedAddress is a previously stored address owned by an authenticated user.
type SavedAddress struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	FullAddress string    `json:"full_address"`
	Country     string    `json:"country"`
	District    string    `json:"district"`
	PostalCode  string    `json:"postal_code,omitempty"`
	Email       string    `json:"email,omitempty"`
	IsDefault   bool      `json:"is_default"`
}

// InlineAddress is the address payload entered on the checkout form, used
// for guests and for "ship to a new address". Email and postal code are
// optional; everything else is required before submission.
type InlineAddress struct {
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	FullAddress string `json:"full_address" validate:"required"`
	Country     string `json:"country" validate:"required"`
	District    string `json:"district" validate:"required"`
	PostalCode  string `json:"postal_code,omitempty"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	IsDefault   bool   `json:"is_default,omitempty"`
}
