package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeTransport          Code = "TRANSPORT_ERROR"
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeVariantNotFound    Code = "VARIANT_NOT_FOUND"
	CodeEmptyCart          Code = "EMPTY_CART"
	CodeIncompleteAddress  Code = "INCOMPLETE_ADDRESS"
	CodeEmptyCode          Code = "EMPTY_CODE"
	CodeEmptySubtotal      Code = "EMPTY_SUBTOTAL"
	CodeCouponInvalid      Code = "COUPON_INVALID"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeInternal           Code = "INTERNAL_ERROR"
)

type Metadata struct {
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeTransport: {
		Retryable:     true,
		PublicMessage: "could not reach the store, please try again",
	},
	CodeValidation: {
		Retryable:      false,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	CodeVariantNotFound: {
		Retryable:     false,
		PublicMessage: "product is no longer available",
	},
	CodeEmptyCart: {
		Retryable:     false,
		PublicMessage: "cart is empty",
	},
	CodeIncompleteAddress: {
		Retryable:      false,
		PublicMessage:  "shipping address is incomplete",
		DetailsAllowed: true,
	},
	CodeEmptyCode: {
		Retryable:     false,
		PublicMessage: "coupon code is required",
	},
	CodeEmptySubtotal: {
		Retryable:     false,
		PublicMessage: "cart has nothing to discount",
	},
	CodeCouponInvalid: {
		Retryable:      false,
		PublicMessage:  "coupon was rejected",
		DetailsAllowed: true,
	},
	CodeInvalidCredentials: {
		Retryable:     false,
		PublicMessage: "email or password is incorrect",
	},
	CodeUnauthorized: {
		Retryable:     false,
		PublicMessage: "authentication required",
	},
	CodeNotFound: {
		Retryable:     false,
		PublicMessage: "resource not found",
	},
	CodeInternal: {
		Retryable:     true,
		PublicMessage: "internal error",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Retryable reports whether retrying the user action may succeed.
func Retryable(err error) bool {
	typed := As(err)
	if typed == nil {
		return false
	}
	return MetadataFor(typed.Code()).Retryable
}

// Is reports whether err carries the given domain code.
func Is(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
