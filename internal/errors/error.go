package errors

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyAuth    = errors.New("missing authorization")
	ErrEmptySubject = errors.New("missing subject")
	ErrTokenInvalid = errors.New("invalid token")
	ErrForbidden    = errors.New("forbidden")

	ErrValidation        = errors.New("Please fill all fields.")
	ErrEmptyCart         = errors.New("Your cart is empty.")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrInvalidQuantity   = errors.New("invalid quantity direction")
	ErrInvalidID         = errors.New("invalid id")
	ErrInvalidBody       = errors.New("invalid request body")
	ErrPersistence       = errors.New("failed persisting order")
	ErrClearCart         = errors.New("failed clearing cart")

	ErrNotFound         = errors.New("not found")
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrCartItemNotFound = fmt.Errorf("cart item %w", ErrNotFound)
)
