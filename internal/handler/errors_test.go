package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/cart"
	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/order"
	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/product"
	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/stock"
)

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"product not found", product.ErrNotFound, http.StatusNotFound, "not_found"},
		{"order not found", order.ErrNotFound, http.StatusNotFound, "not_found"},
		{"cart item not found", cart.ErrItemNotFound, http.StatusNotFound, "not_found"},
		{"wrapped not found", errors.Wrap(order.ErrNotFound, "get order"), http.StatusNotFound, "not_found"},
		{"empty cart", order.ErrEmptyCart, http.StatusUnprocessableEntity, "validation"},
		{"invalid quantity", cart.ErrInvalidQuantity, http.StatusUnprocessableEntity, "validation"},
		{
			"insufficient stock",
			&stock.InsufficientStockError{ProductID: 7, Requested: 5, Available: 2},
			http.StatusUnprocessableEntity, "validation",
		},
		{
			"invalid transition",
			&order.InvalidTransitionError{From: order.StatusDelivered, To: order.StatusPending},
			http.StatusConflict, "state_conflict",
		},
		{
			"state conflict",
			&order.StateConflictError{Status: order.StatusConfirmed, Op: "update shipping address"},
			http.StatusConflict, "state_conflict",
		},
		{"concurrency conflict", order.ErrConcurrencyConflict, http.StatusConflict, "conflict"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/orders/1", nil)

			writeError(rec, req, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantKind, resp.Kind)
		})
	}
}

func TestWriteError_InsufficientStockDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)

	writeError(rec, req, &stock.InsufficientStockError{ProductID: 7, Requested: 5, Available: 2})

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(7), resp.Details["product_id"])
	assert.Equal(t, float64(5), resp.Details["requested"])
	assert.Equal(t, float64(2), resp.Details["available"])
}

func TestWriteError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)

	writeError(rec, req, errors.New("pq: connection refused"))

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Message)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
