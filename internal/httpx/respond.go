package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-basket/internal/basket"
	"github.com/ariefcatur/go-basket/internal/catalog"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError is the only place basket errors become HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var rej *basket.RejectionError
	switch {
	case errors.As(err, &rej):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: rej.Error(), Code: "quantity_exceeded"})
	case errors.Is(err, catalog.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Code: "product_not_found"})
	case errors.Is(err, basket.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Code: "item_not_found"})
	case errors.Is(err, basket.ErrInvalidQuantity):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_quantity"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Code: "invalid_request"})
}
