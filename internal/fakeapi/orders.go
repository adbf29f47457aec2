package fakeapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/pkg/httputil"
	"github.com/utafrali/bookshelf/pkg/pagination"
)

// createOrder handles POST /api/v1/orders.
func (h *handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var in domain.OrderCreate
	if !h.decode(w, r, &in) {
		return
	}
	o, err := h.store.CreateOrder(currentUser(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, o)
}

// listOrders handles GET /api/v1/orders.
func (h *handler) listOrders(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.ListOrders(currentUser(r), pagination.FromRequest(r)))
}

// adminListOrders handles GET /api/v1/orders/admin.
func (h *handler) adminListOrders(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeQueryError(w, r, &queryError{name: "status", msg: "unknown order status"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.store.AdminListOrders(pagination.FromRequest(r), status))
}

// getOrder handles GET /api/v1/orders/{orderID}.
func (h *handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.store.GetOrder(currentUser(r), chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

// cancelOrder handles PUT /api/v1/orders/{orderID}/cancel.
func (h *handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.store.CancelOrder(currentUser(r), chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

// updateOrderStatus handles PATCH /api/v1/orders/{orderID}/status (admin).
func (h *handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var in domain.OrderStatusUpdate
	if !h.decode(w, r, &in) {
		return
	}
	o, err := h.store.SetOrderStatus(chi.URLParam(r, "orderID"), in.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}
