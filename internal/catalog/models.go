package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           int64
	Title        string
	Description  string
	CategoryID   int64
	Price        decimal.Decimal // base price
	FreeDelivery bool
	Available    bool
	CreatedAt    time.Time
	Sales        []SaleWindow
}

// SaleWindow is a time-bounded discount. From and To are calendar dates, To inclusive.
type SaleWindow struct {
	SalePrice decimal.Decimal
	From      time.Time
	To        time.Time
}
