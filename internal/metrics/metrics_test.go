package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBasketMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBasketMetrics(reg, "basket_api")

	m.Observe("add", "session", "ok")
	m.Observe("add", "session", "ok")
	m.Observe("remove", "user", "rejected")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("add", "session", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("remove", "user", "rejected")))
}

func TestBasketMetrics_NilSafe(t *testing.T) {
	var m *BasketMetrics
	assert.NotPanics(t, func() { m.Observe("add", "user", "ok") })
}

func TestNewServerMetrics_HyphenatedService(t *testing.T) {
	reg := prometheus.NewRegistry()
	assert.NotPanics(t, func() { NewServerMetrics(reg, "basket-api") })

	m := NewBasketMetrics(reg, "basket-api")
	m.Observe("add", "user", "ok")
	n, err := testutil.GatherAndCount(reg, "shop_basket_api_basket_operations_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
}
