package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics of the chart pipeline.
type Metrics struct {
	ChartRequests      *prometheus.CounterVec // labels: result
	FetchDur           prometheus.Histogram
	IndicatorDur       prometheus.Histogram
	BarsFetched        prometheus.Histogram
	InstrumentCacheHit *prometheus.CounterVec // labels: result=hit|miss
	InstrumentRefresh  *prometheus.CounterVec // labels: result=ok|error

	registry *prometheus.Registry
}

// NewMetrics creates the metrics on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ChartRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chart_requests_total",
			Help: "Chart requests by result",
		}, []string{"result"}),
		FetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chart_fetch_duration_seconds",
			Help:    "Time spent fetching daily bars",
			Buckets: prometheus.DefBuckets,
		}),
		IndicatorDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chart_indicator_duration_seconds",
			Help:    "Time spent computing, trimming and summarizing indicators",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		BarsFetched: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chart_bars_fetched",
			Help:    "Bars returned per widened fetch",
			Buckets: []float64{30, 60, 120, 250, 400},
		}),
		InstrumentCacheHit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "instrument_cache_lookups_total",
			Help: "Instrument cache lookups by result",
		}, []string{"result"}),
		InstrumentRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "instrument_cache_refresh_total",
			Help: "Instrument list refreshes by result",
		}, []string{"result"}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.ChartRequests,
		m.FetchDur,
		m.IndicatorDur,
		m.BarsFetched,
		m.InstrumentCacheHit,
		m.InstrumentRefresh,
	)
	// Export every series from the first scrape.
	for _, result := range []string{"ok", "error"} {
		m.ChartRequests.WithLabelValues(result)
		m.InstrumentRefresh.WithLabelValues(result)
	}
	for _, result := range []string{"hit", "miss"} {
		m.InstrumentCacheHit.WithLabelValues(result)
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
