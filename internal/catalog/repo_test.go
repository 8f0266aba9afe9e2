package catalog_test

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-basket/internal/catalog"
	"github.com/ariefcatur/go-basket/internal/postgres/testdb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepo_FindByIDs_AttachesSales(t *testing.T) {
	pool := testdb.Start(t)
	a := testdb.SeedProduct(t, pool, "Lamp", "100.00")
	b := testdb.SeedProduct(t, pool, "Chair", "49.90")
	testdb.SeedSale(t, pool, a, "80.00", "2025-01-01", "2025-01-31")
	testdb.SeedSale(t, pool, a, "70.00", "2025-01-10", "2025-01-20")

	repo := catalog.NewRepo(pool)
	ps, err := repo.FindByIDs(context.Background(), []int64{b, a, 999999})
	require.NoError(t, err)
	require.Len(t, ps, 2)

	assert.Equal(t, a, ps[0].ID)
	assert.True(t, decimal.RequireFromString("100").Equal(ps[0].Price))
	require.Len(t, ps[0].Sales, 2)
	assert.Equal(t, 10, ps[0].Sales[1].From.Day())
	assert.Equal(t, 20, ps[0].Sales[1].To.Day())
	assert.Empty(t, ps[1].Sales)
}

func TestRepo_Get_NotFound(t *testing.T) {
	pool := testdb.Start(t)
	repo := catalog.NewRepo(pool)

	_, err := repo.Get(context.Background(), 424242)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestRepo_List(t *testing.T) {
	pool := testdb.Start(t)
	testdb.SeedProduct(t, pool, "Lamp", "10.00")
	hidden := testdb.SeedProduct(t, pool, "Gone", "1.00")
	_, err := pool.Exec(context.Background(), `UPDATE products SET available = FALSE WHERE id = $1`, hidden)
	require.NoError(t, err)

	ps, err := catalog.NewRepo(pool).List(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "Lamp", ps[0].Title)
}
