package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	inErrors "github.com/Alturino/storefront/internal/errors"
)

func TestStatusCodeFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: http.StatusOK},
		{name: "validation", err: inErrors.ErrValidation, expected: http.StatusBadRequest},
		{name: "empty cart", err: fmt.Errorf("failed placing order with error=%w", inErrors.ErrEmptyCart), expected: http.StatusBadRequest},
		{name: "invalid transition", err: inErrors.ErrInvalidTransition, expected: http.StatusBadRequest},
		{name: "invalid id", err: fmt.Errorf("failed parsing orderId=x with error=%w", inErrors.ErrInvalidID), expected: http.StatusBadRequest},
		{name: "order not found", err: inErrors.ErrOrderNotFound, expected: http.StatusNotFound},
		{name: "missing authorization", err: inErrors.ErrEmptyAuth, expected: http.StatusUnauthorized},
		{name: "forbidden", err: inErrors.ErrForbidden, expected: http.StatusForbidden},
		{name: "persistence", err: inErrors.ErrPersistence, expected: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, StatusCodeFromError(test.err))
		})
	}
}

func TestMessageFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "validation", err: fmt.Errorf("failed validating shipping with error=%w", inErrors.ErrValidation), expected: "Please fill all fields."},
		{name: "empty cart", err: fmt.Errorf("failed placing order with error=%w", inErrors.ErrEmptyCart), expected: "Your cart is empty."},
		{name: "product not found", err: fmt.Errorf("id=1 %w", inErrors.ErrProductNotFound), expected: "product not found"},
		{name: "persistence", err: fmt.Errorf("%w: connection refused", inErrors.ErrPersistence), expected: MessageInternalFailure},
		{name: "unknown", err: errors.New("boom"), expected: MessageInternalFailure},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, MessageFromError(test.err))
		})
	}
}
