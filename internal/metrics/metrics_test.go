package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/holopack/internal/domain/catalog"
)

func TestShopMetrics_Counters(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.PackOpened("standard", "purchase", 5)
	m.PackOpened("standard", "preview", 5)
	m.Purchase("standard", "ok")
	m.Purchase("standard", "insufficient_funds")
	m.DailyClaim(true, nil)
	m.DailyClaim(false, nil)
	m.DailyClaim(false, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PacksOpened.WithLabelValues("standard", "purchase")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.CardsDrawn.WithLabelValues("standard")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Purchases.WithLabelValues("standard", "insufficient_funds")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DailyClaims.WithLabelValues("repeat")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DailyClaims.WithLabelValues("error")))
}

func TestShopMetrics_CatalogLoaded(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	loaded := time.Unix(1700000000, 0)
	m.CatalogLoaded(catalog.Info{Origin: catalog.OriginFeed, Size: 100, LoadedAt: loaded}, nil)
	m.CatalogLoaded(catalog.Info{Origin: catalog.OriginSeed, Size: 6, LoadedAt: loaded}, errors.New("feed down"))

	assert.Equal(t, 6.0, testutil.ToFloat64(m.CatalogCards))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.CatalogAge))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogLoads.WithLabelValues("seed", "error")))
}

func TestShopMetrics_Handler(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	m.Purchase("cosmic", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `holopack_purchases_total{pack="cosmic",result="ok"} 1`))
}
