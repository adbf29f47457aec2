package fakeapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/pkg/httputil"
)

// getCart handles GET /api/v1/cart.
func (h *handler) getCart(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.Cart(currentUser(r)))
}

// addToCart handles POST /api/v1/cart/add.
func (h *handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var in domain.CartAdd
	if !h.decode(w, r, &in) {
		return
	}
	c, err := h.store.AddToCart(currentUser(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

// updateCartItem handles PUT /api/v1/cart/update/{bookID}.
func (h *handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var in domain.CartUpdate
	if !h.decode(w, r, &in) {
		return
	}
	c, err := h.store.UpdateCartItem(currentUser(r), chi.URLParam(r, "bookID"), in.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

// removeFromCart handles DELETE /api/v1/cart/{bookID}.
func (h *handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.RemoveFromCart(currentUser(r), chi.URLParam(r, "bookID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

// clearCart handles DELETE /api/v1/cart/clear.
func (h *handler) clearCart(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.ClearCart(currentUser(r)))
}
