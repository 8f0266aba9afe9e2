package basket

import (
	"math"
	"time"

	"github.com/ariefcatur/go-basket/internal/catalog"
	"github.com/ariefcatur/go-basket/internal/session"
)

const (
	StoreSession = "session"
	StoreUser    = "user"
)

// MaxQuantity bounds a single request's count and any line's total; it is the
// largest value the basket_items.quantity column holds.
const MaxQuantity = math.MaxInt32

// Identity is what the HTTP layer knows about the caller. A non-empty UserID means
// authenticated; otherwise Session must be set.
type Identity struct {
	UserID  string
	Session *session.Handle
	TraceID string
}

func (i Identity) Authenticated() bool { return i.UserID != "" }

// Line is one product's quantity in a durable basket.
type Line struct {
	ProductID int64
	Quantity  int
	UpdatedAt time.Time
}

// Contents is what a store holds right now: the catalog products it references
// and the quantity held per product id.
type Contents struct {
	Products []catalog.Product
	Counts   map[int64]int
}
