package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ariefcatur/go-basket/internal/basket"
	"github.com/go-chi/chi/v5"
)

type BasketService interface {
	View(ctx context.Context, id basket.Identity) (basket.View, error)
	AddItem(ctx context.Context, id basket.Identity, productID int64, quantity int) (basket.View, bool, error)
	RemoveItem(ctx context.Context, id basket.Identity, productID int64, quantity int) (basket.View, error)
}

type BasketHandler struct {
	Basket BasketService
}

// ItemReq is the body of POST and DELETE /basket. Count defaults to 1.
type ItemReq struct {
	ID    int64 `json:"id"`
	Count *int  `json:"count"`
}

// Register expects r to run IdentityMiddleware.
func (h *BasketHandler) Register(r chi.Router) {
	r.Get("/basket", h.view)
	r.Post("/basket", h.add)
	r.Delete("/basket", h.remove)
}

func (h *BasketHandler) view(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, basket.ErrNoSession)
		return
	}
	v, err := h.Basket.View(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *BasketHandler) add(w http.ResponseWriter, r *http.Request) {
	id, req, ok := decodeItem(w, r)
	if !ok {
		return
	}
	v, _, err := h.Basket.AddItem(r.Context(), id, req.ID, req.count())
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if id.Authenticated() {
		status = http.StatusCreated
	}
	writeJSON(w, status, v)
}

func (h *BasketHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, req, ok := decodeItem(w, r)
	if !ok {
		return
	}
	v, err := h.Basket.RemoveItem(r.Context(), id, req.ID, req.count())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func decodeItem(w http.ResponseWriter, r *http.Request) (basket.Identity, ItemReq, bool) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, basket.ErrNoSession)
		return id, ItemReq{}, false
	}
	var req ItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return id, req, false
	}
	if req.ID <= 0 {
		badRequest(w, "missing product id")
		return id, req, false
	}
	return id, req, true
}

func (q ItemReq) count() int {
	if q.Count == nil {
		return 1
	}
	return *q.Count
}
