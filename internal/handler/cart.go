package handler

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/cart"
)

type cartItemJSON struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type cartJSON struct {
	Items []cartItemJSON  `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type addCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the authenticated user's cart lines and total.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	items, err := h.carts.Items(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartJSON(items))
}

// AddCartItem adds quantity units of a product, merging into an existing
// line, and returns the updated cart.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var req addCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.carts.AddItem(r.Context(), userID, req.ProductID, req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}

	items, err := h.carts.Items(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCartJSON(items))
}

// UpdateCartItem sets the absolute quantity of a cart line; zero or negative
// removes it.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	var req updateCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.carts.UpdateQuantity(r.Context(), userID, productID, req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}

	items, err := h.carts.Items(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartJSON(items))
}

// RemoveCartItem deletes a cart line; removing an absent line succeeds.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	if err := h.carts.RemoveItem(r.Context(), userID, productID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EmptyCart removes every line from the user's cart.
func (h *Handler) EmptyCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	if err := h.carts.Clear(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCartTotal returns the exact decimal sum of the cart's line subtotals.
func (h *Handler) GetCartTotal(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	total, err := h.carts.Total(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"total": total})
}

// GetCartItemCount returns the summed quantity across cart lines.
func (h *Handler) GetCartItemCount(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	count, err := h.carts.ItemCount(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func toCartJSON(items []cart.Item) cartJSON {
	out := cartJSON{
		Items: make([]cartItemJSON, len(items)),
		Total: decimal.Zero,
	}
	for i, it := range items {
		out.Items[i] = cartItemJSON{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal(),
		}
		out.Total = out.Total.Add(it.Subtotal())
	}
	return out
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Kind:    kindValidation,
			Message: "invalid " + name,
		})
		return 0, false
	}
	return id, true
}
