package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
)

var ErrProductNotFound = errors.New("product not found")

// Repo reads products and their sale schedule. Queries go through a circuit breaker
// so a struggling database fails fast instead of piling up requests.
type Repo struct {
	DB *pgxpool.Pool
	cb *gobreaker.CircuitBreaker[[]Product]
	sf singleflight.Group // collapses concurrent Get for the same id
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		DB: db,
		cb: gobreaker.NewCircuitBreaker[[]Product](gobreaker.Settings{
			Name:    "catalog",
			Timeout: 10 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
		}),
	}
}

// FindByIDs returns the products that exist among ids, ordered by id, with sales attached.
// Unknown ids are silently absent from the result.
func (r *Repo) FindByIDs(ctx context.Context, ids []int64) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.cb.Execute(func() ([]Product, error) {
		return r.query(ctx, `SELECT id, title, description, category_id, price::text, free_delivery, available, created_at
		                     FROM products WHERE id = ANY($1) ORDER BY id`, ids)
	})
}

func (r *Repo) Get(ctx context.Context, id int64) (Product, error) {
	v, err, _ := r.sf.Do(strconv.FormatInt(id, 10), func() (any, error) {
		return r.FindByIDs(ctx, []int64{id})
	})
	if err != nil {
		return Product{}, err
	}
	ps := v.([]Product)
	if len(ps) == 0 {
		return Product{}, ErrProductNotFound
	}
	return ps[0], nil
}

// List returns every available product.
func (r *Repo) List(ctx context.Context) ([]Product, error) {
	return r.cb.Execute(func() ([]Product, error) {
		return r.query(ctx, `SELECT id, title, description, category_id, price::text, free_delivery, available, created_at
		                     FROM products WHERE available ORDER BY id`)
	})
}

func (r *Repo) query(ctx context.Context, sql string, args ...any) ([]Product, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var (
			p     Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.CategoryID, &price, &p.FreeDelivery, &p.Available, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("product %d price %q: %w", p.ID, price, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	return out, r.attachSales(ctx, out)
}

func (r *Repo) attachSales(ctx context.Context, ps []Product) error {
	ids := make([]int64, len(ps))
	idx := make(map[int64]int, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
		idx[p.ID] = i
	}
	rows, err := r.DB.Query(ctx, `SELECT product_id, sale_price::text, date_from, date_to
	                              FROM sales WHERE product_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			pid   int64
			price string
			s     SaleWindow
		)
		if err := rows.Scan(&pid, &price, &s.From, &s.To); err != nil {
			return fmt.Errorf("failed to scan sale: %w", err)
		}
		if s.SalePrice, err = decimal.NewFromString(price); err != nil {
			return fmt.Errorf("sale price %q: %w", price, err)
		}
		i := idx[pid]
		ps[i].Sales = append(ps[i].Sales, s)
	}
	return rows.Err()
}
