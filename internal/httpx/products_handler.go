package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/go-basket/internal/catalog"
	"github.com/ariefcatur/go-basket/internal/pricing"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductLister interface {
	List(ctx context.Context) ([]catalog.Product, error)
}

type ProductsHandler struct {
	Catalog ProductLister
	Log     *zap.Logger
	Now     func() time.Time
}

type ProductResp struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Category     int64           `json:"category"`
	FreeDelivery bool            `json:"freeDelivery"`
	Date         time.Time       `json:"date"`
	Price        decimal.Decimal `json:"price"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Get("/products", h.list)
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Catalog.List(r.Context())
	if err != nil {
		h.Log.Error("list products", zap.Error(err))
		writeError(w, err)
		return
	}
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	out := make([]ProductResp, 0, len(ps))
	for _, p := range ps {
		out = append(out, ProductResp{
			ID:           p.ID,
			Title:        p.Title,
			Description:  p.Description,
			Category:     p.CategoryID,
			FreeDelivery: p.FreeDelivery,
			Date:         p.CreatedAt,
			Price:        p.Price,
			CurrentPrice: pricing.Resolve(p, now),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
