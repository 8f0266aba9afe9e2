// Package pricing resolves the effective price of a product from its sale schedule.
package pricing

import (
	"time"

	"github.com/ariefcatur/go-basket/internal/catalog"
	"github.com/shopspring/decimal"
)

// Resolve returns the lowest sale price among windows active on the calendar date of at,
// or the base price when none is active. A window is active when From <= date <= To.
func Resolve(p catalog.Product, at time.Time) decimal.Decimal {
	day := Date(at)
	var (
		best  decimal.Decimal
		found bool
	)
	for _, s := range p.Sales {
		if day.Before(Date(s.From)) || day.After(Date(s.To)) {
			continue
		}
		if !found || s.SalePrice.LessThan(best) {
			best, found = s.SalePrice, true
		}
	}
	if found {
		return best
	}
	return p.Price
}

// Date truncates t to midnight UTC of its UTC calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
