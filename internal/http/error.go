package http

import (
	"errors"
	"net/http"

	inErrors "github.com/Alturino/storefront/internal/errors"
)

func StatusCodeFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, inErrors.ErrValidation),
		errors.Is(err, inErrors.ErrEmptyCart),
		errors.Is(err, inErrors.ErrInvalidStatus),
		errors.Is(err, inErrors.ErrInvalidTransition),
		errors.Is(err, inErrors.ErrInvalidQuantity),
		errors.Is(err, inErrors.ErrInvalidID),
		errors.Is(err, inErrors.ErrInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, inErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, inErrors.ErrEmptyAuth),
		errors.Is(err, inErrors.ErrEmptySubject),
		errors.Is(err, inErrors.ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, inErrors.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

var publicErrors = []error{
	inErrors.ErrValidation,
	inErrors.ErrEmptyCart,
	inErrors.ErrInvalidStatus,
	inErrors.ErrInvalidTransition,
	inErrors.ErrInvalidQuantity,
	inErrors.ErrInvalidID,
	inErrors.ErrInvalidBody,
	inErrors.ErrOrderNotFound,
	inErrors.ErrProductNotFound,
	inErrors.ErrCartItemNotFound,
	inErrors.ErrNotFound,
	inErrors.ErrEmptyAuth,
	inErrors.ErrEmptySubject,
	inErrors.ErrTokenInvalid,
	inErrors.ErrForbidden,
}

// MessageFromError returns the message of the first known error in err's chain,
// so wrapping context never reaches the client.
func MessageFromError(err error) string {
	for _, target := range publicErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return MessageInternalFailure
}
