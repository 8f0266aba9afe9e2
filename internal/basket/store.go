package basket

import (
	"context"
	"time"

	"github.com/ariefcatur/go-basket/internal/catalog"
	"github.com/ariefcatur/go-basket/internal/pricing"
	"github.com/ariefcatur/go-basket/internal/session"
)

type ProductFinder interface {
	Get(ctx context.Context, id int64) (catalog.Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]catalog.Product, error)
}

// UserBaskets is the durable store; *Repo implements it.
type UserBaskets interface {
	AddItem(ctx context.Context, userID string, productID int64, quantity int) (bool, error)
	RemoveItem(ctx context.Context, userID string, productID int64, quantity int) error
	Lines(ctx context.Context, userID string) ([]Line, error)
}

// Store is a basket bound to one caller for the length of a request.
type Store interface {
	Kind() string
	Owner() string
	Add(ctx context.Context, p catalog.Product, quantity int) (created bool, err error)
	Remove(ctx context.Context, productID int64, quantity int) error
	Contents(ctx context.Context) (Contents, error)
	// Commit makes the request's mutations durable.
	Commit(ctx context.Context) error
}

type sessionStore struct {
	b   *SessionBasket
	h   *session.Handle
	cat ProductFinder
	now func() time.Time
}

func (s *sessionStore) Kind() string  { return StoreSession }
func (s *sessionStore) Owner() string { return s.h.ID() }

func (s *sessionStore) Add(_ context.Context, p catalog.Product, quantity int) (bool, error) {
	_, had := s.b.Quantity(p.ID)
	if err := s.b.Put(p, quantity, false, pricing.Resolve(p, s.now())); err != nil {
		return false, err
	}
	return !had, nil
}

// Remove applies the session basket's own rule and then drops anything left at zero or below.
func (s *sessionStore) Remove(_ context.Context, productID int64, quantity int) error {
	if err := s.b.Remove(productID, quantity); err != nil {
		return err
	}
	s.b.Prune()
	return nil
}

func (s *sessionStore) Contents(ctx context.Context) (Contents, error) {
	entries, err := s.b.Entries(ctx, s.cat)
	if err != nil {
		return Contents{}, err
	}
	c := Contents{Counts: map[int64]int{}}
	for e := range entries {
		c.Counts[e.ProductID] = e.Quantity
		if e.Product != nil {
			c.Products = append(c.Products, *e.Product)
		}
	}
	return c, nil
}

func (s *sessionStore) Commit(ctx context.Context) error { return s.h.Save(ctx) }

type userStore struct {
	userID string
	repo   UserBaskets
	cat    ProductFinder
}

func (u *userStore) Kind() string  { return StoreUser }
func (u *userStore) Owner() string { return u.userID }

func (u *userStore) Add(ctx context.Context, p catalog.Product, quantity int) (bool, error) {
	return u.repo.AddItem(ctx, u.userID, p.ID, quantity)
}

func (u *userStore) Remove(ctx context.Context, productID int64, quantity int) error {
	return u.repo.RemoveItem(ctx, u.userID, productID, quantity)
}

func (u *userStore) Contents(ctx context.Context) (Contents, error) {
	lines, err := u.repo.Lines(ctx, u.userID)
	if err != nil {
		return Contents{}, err
	}
	c := Contents{Counts: make(map[int64]int, len(lines))}
	if len(lines) == 0 {
		return c, nil
	}
	ids := make([]int64, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
		c.Counts[l.ProductID] = l.Quantity
	}
	if c.Products, err = u.cat.FindByIDs(ctx, ids); err != nil {
		return Contents{}, err
	}
	return c, nil
}

func (u *userStore) Commit(context.Context) error { return nil }
