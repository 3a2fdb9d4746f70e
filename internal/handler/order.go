package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/order"
)

type orderItemJSON struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type orderJSON struct {
	ID              int64           `json:"id"`
	Number          string          `json:"number"`
	UserID          int64           `json:"user_id"`
	CreatedAt       time.Time       `json:"created_at"`
	ShippingAddress string          `json:"shipping_address"`
	Status          string          `json:"status"`
	Total           decimal.Decimal `json:"total"`
	Items           []orderItemJSON `json:"items,omitempty"`
}

type checkoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type updateAddressRequest struct {
	ShippingAddress string `json:"shipping_address"`
}

// Checkout converts the user's cart into an order. The body, like the
// shipping address inside it, is optional: the address falls back to the
// user's default.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var req checkoutRequest
	if !decodeJSONOptional(w, r, &req) {
		return
	}

	o, err := h.checkout.Checkout(r.Context(), userID, req.ShippingAddress)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderJSON(o))
}

// GetOrder returns an order with its items.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderJSON(o))
}

// GetOrderByNumber returns an order looked up by its generated number.
func (h *Handler) GetOrderByNumber(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByNumber(r.Context(), r.PathValue("number"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderJSON(o))
}

// ListOrders returns a page of the authenticated user's orders plus the
// total count.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	page := order.Page{
		Number: queryInt(r, "page", 0),
		Size:   queryInt(r, "size", 20),
	}

	list, err := h.orders.ListByUser(r.Context(), userID, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	count, err := h.orders.CountByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"orders": toOrderListJSON(list),
		"count":  count,
	})
}

// ListOrdersByStatus returns all orders in the given status.
func (h *Handler) ListOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	status, err := order.ParseStatus(r.PathValue("status"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Kind:    kindValidation,
			Message: err.Error(),
		})
		return
	}

	list, err := h.orders.ListByStatus(r.Context(), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": toOrderListJSON(list)})
}

// ListOrdersByDateRange returns orders created within the from/to RFC 3339
// query bounds.
func (h *Handler) ListOrdersByDateRange(w http.ResponseWriter, r *http.Request) {
	from, err1 := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	to, err2 := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err1 != nil || err2 != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Kind:    kindValidation,
			Message: "from and to must be RFC 3339 timestamps",
		})
		return
	}

	list, err := h.orders.ListByDateRange(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": toOrderListJSON(list)})
}

// UpdateOrderStatus moves an order along its lifecycle.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	next, err := order.ParseStatus(req.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Kind:    kindValidation,
			Message: err.Error(),
		})
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), id, next)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderJSON(o))
}

// UpdateOrderAddress changes the shipping address of a still-pending order.
func (h *Handler) UpdateOrderAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateAddressRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ShippingAddress == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Kind:    kindValidation,
			Message: "shipping_address is required",
		})
		return
	}

	o, err := h.orders.UpdateShippingAddress(r.Context(), id, req.ShippingAddress)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderJSON(o))
}

func toOrderJSON(o *order.Order) orderJSON {
	out := orderJSON{
		ID:              o.ID,
		Number:          o.Number,
		UserID:          o.UserID,
		CreatedAt:       o.CreatedAt,
		ShippingAddress: o.ShippingAddress,
		Status:          string(o.Status),
		Total:           o.Total,
		Items:           make([]orderItemJSON, len(o.Items)),
	}
	for i, it := range o.Items {
		out.Items[i] = orderItemJSON{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal(),
		}
	}
	return out
}

func toOrderListJSON(list []order.Order) []orderJSON {
	out := make([]orderJSON, len(list))
	for i := range list {
		out[i] = toOrderJSON(&list[i])
	}
	return out
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
