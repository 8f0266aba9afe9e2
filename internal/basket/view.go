package basket

import (
	"time"

	"github.com/ariefcatur/go-basket/internal/catalog"
	"github.com/ariefcatur/go-basket/internal/pricing"
	"github.com/shopspring/decimal"
)

type View struct {
	Items []ViewLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type ViewLine struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Category     int64           `json:"category"`
	FreeDelivery bool            `json:"freeDelivery"`
	Date         time.Time       `json:"date"`
	Price        decimal.Decimal `json:"price"`
	Count        int             `json:"count"`
	Total        decimal.Decimal `json:"total"`
}

// Project prices every product at its effective price on at. A product missing from
// counts shows a count of zero.
func Project(c Contents, at time.Time) View {
	v := View{Items: make([]ViewLine, 0, len(c.Products)), Total: decimal.Zero}
	for _, p := range c.Products {
		line := project(p, c.Counts[p.ID], at)
		v.Total = v.Total.Add(line.Total)
		v.Items = append(v.Items, line)
	}
	return v
}

func project(p catalog.Product, count int, at time.Time) ViewLine {
	price := pricing.Resolve(p, at)
	return ViewLine{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Category:     p.CategoryID,
		FreeDelivery: p.FreeDelivery,
		Date:         p.CreatedAt,
		Price:        price,
		Count:        count,
		Total:        price.Mul(decimal.NewFromInt(int64(count))),
	}
}
