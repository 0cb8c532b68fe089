package services

import "errors"

// Engine errors. All of them are caller-reported conditions; handlers map them to
// HTTP statuses with errors.Is.
var (
	ErrInvalidAmount      = errors.New("invalid deposit amount")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrProductUnavailable = errors.New("product is not available for purchase")
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrInvalidProduct     = errors.New("invalid product")
	// ErrNotFound covers missing, soft-deleted and not-owned products alike.
	ErrNotFound      = errors.New("not found")
	ErrAccountExists = errors.New("account already exists")
	ErrContention    = errors.New("too many concurrent updates, try again")

	ErrUserExists         = errors.New("username already exists")
	ErrInvalidRole        = errors.New("role can not be found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
