package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors raised before a request is sent.
	ErrorInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrorInvalidEmail       = errors.New("invalid email")
	ErrorEmptyPassword      = errors.New("password must not be empty")
	ErrorMissingIdentity    = errors.New("username or email required")
	ErrorNotAuthenticated   = errors.New("not authenticated")
	ErrorAdminOnly          = errors.New("admin privileges required")
	ErrorEmptyCart          = errors.New("cart is empty")
	ErrorNoRefreshToken     = errors.New("no refresh token")
	ErrorInvalidOrderStatus = errors.New("invalid order status")
	ErrorInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrorMissingName        = errors.New("name must not be empty")
	ErrorNegativePrice      = errors.New("price must not be negative")
	ErrorInvalidID          = errors.New("id must be positive")
	ErrorSessionChanged     = errors.New("session changed during sign-in")
)
