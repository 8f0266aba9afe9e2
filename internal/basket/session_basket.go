package basket

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"slices"
	"strconv"

	"github.com/ariefcatur/go-basket/internal/catalog"
	"github.com/ariefcatur/go-basket/internal/session"
	"github.com/shopspring/decimal"
)

// sessionLine is the stored shape: {"<product_id>": {"quantity": 2, "price": "9.99"}}.
type sessionLine struct {
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// SessionBasket is the anonymous basket kept under one key of the client's session.
// Mutations are written into the handle; the caller saves the handle once per request.
type SessionBasket struct {
	h     *session.Handle
	key   string
	lines map[string]*sessionLine
}

// OpenSessionBasket returns the session's basket, creating an empty one if absent.
// A payload that fails validation is reported with session.ErrInvalidPayload.
func OpenSessionBasket(h *session.Handle, key string) (*SessionBasket, error) {
	b := &SessionBasket{h: h, key: key, lines: map[string]*sessionLine{}}
	raw, ok := h.Get(key)
	if !ok || raw == "" {
		b.persist()
		return b, nil
	}
	if err := json.Unmarshal([]byte(raw), &b.lines); err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrInvalidPayload, err)
	}
	for id, l := range b.lines {
		// keys must be canonical so lookups by int64 id find them
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil || strconv.FormatInt(n, 10) != id || l == nil {
			return nil, fmt.Errorf("%w: bad product id %q", session.ErrInvalidPayload, id)
		}
		if !validQuantity(l.Quantity) {
			return nil, fmt.Errorf("%w: bad quantity %d for product %s", session.ErrInvalidPayload, l.Quantity, id)
		}
		if _, err := decimal.NewFromString(l.Price); err != nil {
			return nil, fmt.Errorf("%w: bad price %q for product %s", session.ErrInvalidPayload, l.Price, id)
		}
	}
	return b, nil
}

// ResetSessionBasket replaces whatever the session holds with an empty basket.
func ResetSessionBasket(h *session.Handle, key string) *SessionBasket {
	b := &SessionBasket{h: h, key: key, lines: map[string]*sessionLine{}}
	b.persist()
	return b
}

// Put adds quantity to the product's entry, or sets it to quantity when replace is true.
// A new entry captures price as the display fallback. ErrInvalidQuantity is returned,
// with the basket unchanged, when quantity or the resulting total is outside 1..MaxQuantity.
func (b *SessionBasket) Put(p catalog.Product, quantity int, replace bool, price decimal.Decimal) error {
	if !validQuantity(quantity) {
		return ErrInvalidQuantity
	}
	id := strconv.FormatInt(p.ID, 10)
	l, ok := b.lines[id]
	if ok && !replace && l.Quantity > MaxQuantity-quantity {
		return ErrInvalidQuantity
	}
	if !ok {
		l = &sessionLine{Quantity: 0, Price: price.StringFixed(2)}
		b.lines[id] = l
	}
	if replace {
		l.Quantity = quantity
	} else {
		l.Quantity += quantity
	}
	b.persist()
	return nil
}

// Remove decrements the product's entry by quantity. An entry holding exactly one unit
// is deleted whatever quantity was asked for; any other entry is decremented without a
// bounds check, so it may reach zero or below until Prune runs.
func (b *SessionBasket) Remove(productID int64, quantity int) error {
	id := strconv.FormatInt(productID, 10)
	l, ok := b.lines[id]
	if !ok {
		return ErrItemNotFound
	}
	if l.Quantity == 1 {
		delete(b.lines, id)
	} else {
		l.Quantity -= quantity
	}
	b.persist()
	return nil
}

// Prune deletes entries whose quantity is no longer positive and reports how many went.
func (b *SessionBasket) Prune() int {
	n := 0
	for id, l := range b.lines {
		if l.Quantity <= 0 {
			delete(b.lines, id)
			n++
		}
	}
	if n > 0 {
		b.persist()
	}
	return n
}

func (b *SessionBasket) Quantity(productID int64) (int, bool) {
	l, ok := b.lines[strconv.FormatInt(productID, 10)]
	if !ok {
		return 0, false
	}
	return l.Quantity, true
}

func (b *SessionBasket) Len() int { return len(b.lines) }

func (b *SessionBasket) ids() []int64 {
	ids := make([]int64, 0, len(b.lines))
	for id := range b.lines {
		n, _ := strconv.ParseInt(id, 10, 64)
		ids = append(ids, n)
	}
	slices.Sort(ids)
	return ids
}

// Entry is one priced line of the anonymous basket. Product is nil when the catalog no
// longer has the product; Price is the captured price, not the effective one.
type Entry struct {
	ProductID  int64
	Product    *catalog.Product
	Quantity   int
	Price      decimal.Decimal
	TotalPrice decimal.Decimal
}

// Entries looks the basket's products up once and returns a sequence over every entry,
// in product id order. The sequence may be ranged over more than once.
func (b *SessionBasket) Entries(ctx context.Context, cat ProductFinder) (iter.Seq[Entry], error) {
	ids := b.ids()
	products, err := cat.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return func(yield func(Entry) bool) {
		for _, id := range ids {
			l, ok := b.lines[strconv.FormatInt(id, 10)]
			if !ok {
				continue
			}
			price, _ := decimal.NewFromString(l.Price)
			e := Entry{
				ProductID:  id,
				Product:    byID[id],
				Quantity:   l.Quantity,
				Price:      price,
				TotalPrice: price.Mul(decimal.NewFromInt(int64(l.Quantity))),
			}
			if !yield(e) {
				return
			}
		}
	}, nil
}

func (b *SessionBasket) persist() {
	raw, _ := json.Marshal(b.lines) // map of plain structs cannot fail
	b.h.Set(b.key, string(raw))
}
