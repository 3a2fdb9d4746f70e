package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/cart"
	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/order"
	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/product"
	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/stock"
	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/user"
)

// Error kinds exposed to clients. Each domain error category keeps its own
// kind so callers can branch on it rather than on a collapsed status code.
const (
	kindNotFound      = "not_found"
	kindValidation    = "validation"
	kindStateConflict = "state_conflict"
	kindConflict      = "conflict"
	kindInternal      = "internal"
)

type errorResponse struct {
	Code    int            `json:"code"`
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// writeError maps a domain error to its HTTP shape. Unexpected errors are
// logged and surfaced as a generic 500 without internal detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficientErr *stock.InsufficientStockError
	if errors.As(err, &insufficientErr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:    http.StatusUnprocessableEntity,
			Kind:    kindValidation,
			Message: insufficientErr.Error(),
			Details: map[string]any{
				"product_id": insufficientErr.ProductID,
				"requested":  insufficientErr.Requested,
				"available":  insufficientErr.Available,
			},
		})
		return
	}

	var transitionErr *order.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		writeJSON(w, http.StatusConflict, errorResponse{
			Code:    http.StatusConflict,
			Kind:    kindStateConflict,
			Message: transitionErr.Error(),
		})
		return
	}

	var stateErr *order.StateConflictError
	if errors.As(err, &stateErr) {
		writeJSON(w, http.StatusConflict, errorResponse{
			Code:    http.StatusConflict,
			Kind:    kindStateConflict,
			Message: stateErr.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, cart.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{
			Code:    http.StatusNotFound,
			Kind:    kindNotFound,
			Message: err.Error(),
		})

	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, cart.ErrInvalidQuantity):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:    http.StatusUnprocessableEntity,
			Kind:    kindValidation,
			Message: err.Error(),
		})

	case errors.Is(err, order.ErrConcurrencyConflict):
		writeJSON(w, http.StatusConflict, errorResponse{
			Code:    http.StatusConflict,
			Kind:    kindConflict,
			Message: err.Error(),
		})

	default:
		logError(r, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Code:    http.StatusInternalServerError,
			Kind:    kindInternal,
			Message: "internal server error",
		})
	}
}
