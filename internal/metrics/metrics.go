package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ellavondegurechaff/holopack/internal/domain/catalog"
)

const Namespace = "holopack"

// ShopMetrics holds the service's collectors. It satisfies shop.Observer and
// its CatalogLoaded method is a catalog load hook.
type ShopMetrics struct {
	registry *prometheus.Registry

	PacksOpened    *prometheus.CounterVec   // by pack and source (preview/purchase/inventory)
	CardsDrawn     *prometheus.CounterVec   // by pack
	Purchases      *prometheus.CounterVec   // by pack and result
	DailyClaims    *prometheus.CounterVec   // by result
	CatalogLoads   *prometheus.CounterVec   // by origin and result
	CatalogCards   prometheus.Gauge         // size of the live catalog
	CatalogAge     prometheus.Gauge         // unix time of the last load
	RequestLatency *prometheus.HistogramVec // by method, route and status
}

// New builds the collectors and registers them, plus the Go and process
// collectors, on a private registry.
func New() (*ShopMetrics, error) {
	m := &ShopMetrics{
		registry: prometheus.NewRegistry(),

		PacksOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "packs_opened_total",
				Help:      "Packs opened",
			},
			[]string{"pack", "source"},
		),
		CardsDrawn: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "cards_drawn_total",
				Help:      "Cards drawn from opened packs",
			},
			[]string{"pack"},
		),
		Purchases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "purchases_total",
				Help:      "Pack purchases by outcome",
			},
			[]string{"pack", "result"},
		),
		DailyClaims: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "daily_claims_total",
				Help:      "Daily reward claims by outcome",
			},
			[]string{"result"}, // granted/repeat/error
		),
		CatalogLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "catalog_loads_total",
				Help:      "Catalog loads by origin and outcome",
			},
			[]string{"origin", "result"},
		),
		CatalogCards: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "catalog_cards",
				Help:      "Cards in the live catalog",
			},
		),
		CatalogAge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "catalog_loaded_timestamp_seconds",
				Help:      "Unix time the live catalog was loaded",
			},
		),
		RequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	if err := m.Register(m.registry); err != nil {
		return nil, err
	}
	return m, nil
}

// Register adds the collectors to registerer.
func (m *ShopMetrics) Register(registerer prometheus.Registerer) error {
	cs := []prometheus.Collector{
		m.PacksOpened,
		m.CardsDrawn,
		m.Purchases,
		m.DailyClaims,
		m.CatalogLoads,
		m.CatalogCards,
		m.CatalogAge,
		m.RequestLatency,
	}
	if registerer == m.registry {
		cs = append(cs,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	for _, c := range cs {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *ShopMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ShopMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *ShopMetrics) PackOpened(packID, source string, cards int) {
	m.PacksOpened.WithLabelValues(packID, source).Inc()
	m.CardsDrawn.WithLabelValues(packID).Add(float64(cards))
}

func (m *ShopMetrics) Purchase(packID, result string) {
	m.Purchases.WithLabelValues(packID, result).Inc()
}

func (m *ShopMetrics) DailyClaim(granted bool, err error) {
	switch {
	case err != nil:
		m.DailyClaims.WithLabelValues("error").Inc()
	case granted:
		m.DailyClaims.WithLabelValues("granted").Inc()
	default:
		m.DailyClaims.WithLabelValues("repeat").Inc()
	}
}

// CatalogLoaded records every catalog load, successful or not.
func (m *ShopMetrics) CatalogLoaded(info catalog.Info, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.CatalogLoads.WithLabelValues(string(info.Origin), result).Inc()
	m.CatalogCards.Set(float64(info.Size))
	if !info.LoadedAt.IsZero() {
		m.CatalogAge.Set(float64(info.LoadedAt.Unix()))
	}
}

func (m *ShopMetrics) ObserveRequest(method, route string, status int, took time.Duration) {
	m.RequestLatency.WithLabelValues(method, route, strconv.Itoa(status)).Observe(took.Seconds())
}
