package basket

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-basket/internal/catalog"
	"github.com/ariefcatur/go-basket/internal/session"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

type fakeCatalog struct {
	m        sync.Mutex
	products map[int64]catalog.Product
	err      error
}

func newFakeCatalog(ps ...catalog.Product) *fakeCatalog {
	c := &fakeCatalog{products: map[int64]catalog.Product{}}
	for _, p := range ps {
		c.products[p.ID] = p
	}
	return c
}

func (c *fakeCatalog) Get(_ context.Context, id int64) (catalog.Product, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.err != nil {
		return catalog.Product{}, c.err
	}
	p, ok := c.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	return p, nil
}

func (c *fakeCatalog) FindByIDs(_ context.Context, ids []int64) ([]catalog.Product, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	var out []catalog.Product
	for _, id := range sorted {
		if p, ok := c.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *fakeCatalog) drop(id int64) {
	c.m.Lock()
	defer c.m.Unlock()
	delete(c.products, id)
}

// fakeUsers follows the durable store's rules in memory.
type fakeUsers struct {
	m     sync.Mutex
	lines map[string]map[int64]int
	err   error
}

func newFakeUsers() *fakeUsers { return &fakeUsers{lines: map[string]map[int64]int{}} }

func (u *fakeUsers) AddItem(_ context.Context, userID string, productID int64, quantity int) (bool, error) {
	u.m.Lock()
	defer u.m.Unlock()
	if u.err != nil {
		return false, u.err
	}
	b, ok := u.lines[userID]
	if !ok {
		b = map[int64]int{}
		u.lines[userID] = b
	}
	held, had := b[productID]
	if held > MaxQuantity-quantity {
		return false, ErrInvalidQuantity
	}
	b[productID] += quantity
	return !had, nil
}

func (u *fakeUsers) RemoveItem(_ context.Context, userID string, productID int64, quantity int) error {
	u.m.Lock()
	defer u.m.Unlock()
	held, ok := u.lines[userID][productID]
	if !ok {
		return ErrItemNotFound
	}
	switch {
	case held > quantity:
		u.lines[userID][productID] = held - quantity
	case held == quantity:
		delete(u.lines[userID], productID)
	default:
		return &RejectionError{ProductID: productID, Requested: quantity, Held: held}
	}
	return nil
}

func (u *fakeUsers) Lines(_ context.Context, userID string) ([]Line, error) {
	u.m.Lock()
	defer u.m.Unlock()
	var out []Line
	for id, q := range u.lines[userID] {
		out = append(out, Line{ProductID: id, Quantity: q})
	}
	slices.SortFunc(out, func(a, b Line) int { return cmp.Compare(a.ProductID, b.ProductID) })
	return out, nil
}

func (u *fakeUsers) quantity(userID string, productID int64) (int, bool) {
	u.m.Lock()
	defer u.m.Unlock()
	q, ok := u.lines[userID][productID]
	return q, ok
}

type fakePublisher struct {
	m    sync.Mutex
	msgs []kafkago.Message
}

func (p *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.m.Lock()
	defer p.m.Unlock()
	p.msgs = append(p.msgs, kafkago.Message{Key: key, Value: value, Headers: headers})
}

func (p *fakePublisher) messages() []kafkago.Message {
	p.m.Lock()
	defer p.m.Unlock()
	return slices.Clone(p.msgs)
}

func setupSessions(t *testing.T) (*session.Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return session.NewStore(client, time.Hour), mr
}

func loadHandle(t *testing.T, store *session.Store, id string) *session.Handle {
	h, err := store.Load(context.Background(), id)
	require.NoError(t, err)
	return h
}
