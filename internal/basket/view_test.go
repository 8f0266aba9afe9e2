package basket

import (
	"encoding/json"
	"testing"

	"github.com/ariefcatur/go-basket/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	at := day("2025-01-15")
	c := Contents{
		Products: []catalog.Product{productA, productB},
		Counts:   map[int64]int{1: 2, 2: 1},
	}

	v := Project(c, at)

	require.Len(t, v.Items, 2)
	assert.Equal(t, 2, v.Items[0].Count)
	assert.True(t, dec("100").Equal(v.Items[0].Total))
	assert.True(t, dec("30").Equal(v.Items[1].Price))
	assert.True(t, dec("130").Equal(v.Total))
}

func TestProject_SaleOver(t *testing.T) {
	v := Project(Contents{Products: []catalog.Product{productB}, Counts: map[int64]int{2: 3}}, day("2025-02-01"))

	assert.True(t, dec("40").Equal(v.Items[0].Price))
	assert.True(t, dec("120").Equal(v.Total))
}

func TestProject_MissingCountIsZero(t *testing.T) {
	v := Project(Contents{Products: []catalog.Product{productA}}, day("2025-01-15"))

	require.Len(t, v.Items, 1)
	assert.Zero(t, v.Items[0].Count)
	assert.True(t, v.Items[0].Total.IsZero())
	assert.True(t, v.Total.IsZero())
}

func TestProject_Empty(t *testing.T) {
	v := Project(Contents{}, day("2025-01-15"))

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"total":"0"}`, string(raw))
}

func TestProject_JSONShape(t *testing.T) {
	p := catalog.Product{ID: 7, Title: "Lamp", Description: "desk", CategoryID: 3, Price: dec("19.90"),
		FreeDelivery: true, CreatedAt: day("2024-12-01")}

	raw, err := json.Marshal(Project(Contents{Products: []catalog.Product{p}, Counts: map[int64]int{7: 2}}, day("2025-01-15")))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"items":[{"id":7,"title":"Lamp","description":"desk","category":3,"freeDelivery":true,
			"date":"2024-12-01T00:00:00Z","price":"19.9","count":2,"total":"39.8"}],
		"total":"39.8"}`, string(raw))
}
