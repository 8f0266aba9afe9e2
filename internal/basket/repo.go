package basket

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-basket/internal/catalog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgForeignKeyViolation = "23503"
	pgNumericOutOfRange   = "22003"
)

// Repo is the durable per-user basket: one baskets row per user, one basket_items
// row per (basket, product).
type Repo struct{ DB *pgxpool.Pool }

// AddItem get-or-creates the user's basket and the product's line and adds quantity,
// all in one transaction. created reports whether the line is new.
func (r *Repo) AddItem(ctx context.Context, userID string, productID int64, quantity int) (created bool, err error) {
	if !validQuantity(quantity) {
		return false, ErrInvalidQuantity
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var basketID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO baskets(user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id`, userID).Scan(&basketID)
	if err != nil {
		return false, fmt.Errorf("get or create basket: %w", err)
	}

	// xmax = 0 only for a freshly inserted row. No row comes back when the
	// increment would push the line past $4.
	err = tx.QueryRow(ctx, `
		INSERT INTO basket_items(basket_id, product_id, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (basket_id, product_id)
		DO UPDATE SET quantity = basket_items.quantity + EXCLUDED.quantity, updated_at = now()
		WHERE basket_items.quantity::bigint + EXCLUDED.quantity <= $4
		RETURNING (xmax = 0)`, basketID, productID, quantity, int64(MaxQuantity)).Scan(&created)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrInvalidQuantity
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgForeignKeyViolation:
				return false, catalog.ErrProductNotFound
			case pgNumericOutOfRange:
				return false, ErrInvalidQuantity
			}
		}
		return false, fmt.Errorf("upsert basket item: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return created, nil
}

// RemoveItem takes quantity units off the product's line. Removing exactly what is held
// deletes the line; asking for more is rejected with *RejectionError and changes nothing.
func (r *Repo) RemoveItem(ctx context.Context, userID string, productID int64, quantity int) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var itemID int64
	var held int
	err = tx.QueryRow(ctx, `
		SELECT bi.id, bi.quantity
		FROM basket_items bi JOIN baskets b ON b.id = bi.basket_id
		WHERE b.user_id = $1 AND bi.product_id = $2
		FOR UPDATE OF bi`, userID, productID).Scan(&itemID, &held)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("lock basket item: %w", err)
	}

	switch {
	case held > quantity:
		_, err = tx.Exec(ctx, `UPDATE basket_items SET quantity = quantity - $2, updated_at = now() WHERE id = $1`, itemID, quantity)
	case held == quantity:
		_, err = tx.Exec(ctx, `DELETE FROM basket_items WHERE id = $1`, itemID)
	default:
		return &RejectionError{ProductID: productID, Requested: quantity, Held: held}
	}
	if err != nil {
		return fmt.Errorf("update basket item: %w", err)
	}
	return tx.Commit(ctx)
}

// Lines lists the user's line items by product id. A user without a basket has none.
func (r *Repo) Lines(ctx context.Context, userID string) ([]Line, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT bi.product_id, bi.quantity, bi.updated_at
		FROM basket_items bi JOIN baskets b ON b.id = bi.basket_id
		WHERE b.user_id = $1
		ORDER BY bi.product_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query basket items: %w", err)
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.Quantity, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// DeleteBasket drops the user's basket and its items. It reports whether one existed.
func (r *Repo) DeleteBasket(ctx context.Context, userID string) (bool, error) {
	ct, err := r.DB.Exec(ctx, `DELETE FROM baskets WHERE user_id = $1`, userID)
	if err != nil {
		return false, fmt.Errorf("delete basket: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}
