// Package testdb starts a throwaway Postgres for repository tests.
package testdb

import (
	"context"
	"testing"
	"time"

	"github.com/ariefcatur/go-basket/internal/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Start runs a migrated postgres:16 container and returns a pool to it.
// The test is skipped when no container runtime is reachable.
func Start(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(dsn))

	pool, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

// SeedProduct inserts a product and returns its id.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, title, price string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO products(title, price) VALUES ($1, $2::numeric) RETURNING id`, title, price).Scan(&id)
	require.NoError(t, err)
	return id
}

// SeedSale attaches a sale window (dates as YYYY-MM-DD) to a product.
func SeedSale(t *testing.T, pool *pgxpool.Pool, productID int64, price, from, to string) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO sales(product_id, sale_price, date_from, date_to) VALUES ($1, $2::numeric, $3::date, $4::date)`,
		productID, price, from, to)
	require.NoError(t, err)
}
