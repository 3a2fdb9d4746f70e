// Package handler exposes the cart, checkout, and order operations over
// HTTP. Transport concerns stop here: handlers decode requests, resolve the
// authenticated user from the context, delegate to the domain services, and
// map domain errors to status codes without collapsing their kinds.
package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/cart"
	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/order"
)

// Handler holds the domain services behind the HTTP surface.
type Handler struct {
	carts    *cart.Service
	checkout *order.CheckoutService
	orders   *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(carts *cart.Service, checkout *order.CheckoutService, orders *order.Service) *Handler {
	return &Handler{
		carts:    carts,
		checkout: checkout,
		orders:   orders,
	}
}

// Routes registers every API route on the mux. Callers wrap the mux with the
// security middleware; all routes here assume an authenticated user in the
// context.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/cart", h.GetCart)
	mux.HandleFunc("POST /api/cart/items", h.AddCartItem)
	mux.HandleFunc("PUT /api/cart/items/{productID}", h.UpdateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{productID}", h.RemoveCartItem)
	mux.HandleFunc("DELETE /api/cart", h.EmptyCart)
	mux.HandleFunc("GET /api/cart/total", h.GetCartTotal)
	mux.HandleFunc("GET /api/cart/count", h.GetCartItemCount)

	mux.HandleFunc("POST /api/checkout", h.Checkout)

	mux.HandleFunc("GET /api/orders", h.ListOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("GET /api/orders/number/{number}", h.GetOrderByNumber)
	mux.HandleFunc("GET /api/orders/status/{status}", h.ListOrdersByStatus)
	mux.HandleFunc("GET /api/orders/range", h.ListOrdersByDateRange)
	mux.HandleFunc("PUT /api/orders/{id}/status", h.UpdateOrderStatus)
	mux.HandleFunc("PUT /api/orders/{id}/address", h.UpdateOrderAddress)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Kind:    kindValidation,
			Message: "invalid request body",
		})
		return false
	}
	return true
}

// decodeJSONOptional is decodeJSON for endpoints where every field is
// optional: an empty body decodes as the zero value instead of failing.
func decodeJSONOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Code:    http.StatusBadRequest,
		Kind:    kindValidation,
		Message: "invalid request body",
	})
	return false
}

func logError(r *http.Request, err error) {
	zctx.From(r.Context()).Error("Request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
}
