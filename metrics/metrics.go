package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg                   *prometheus.Registry
	HTTPRequests          *prometheus.CounterVec
	HTTPLatency           *prometheus.HistogramVec
	HTTPInflight          prometheus.Gauge
	TransactionTransition *prometheus.CounterVec
	TransactionConflicts  prometheus.Counter
	ShopSaves             *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "laundrybear_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "laundrybear_http_request_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	inflight := prometheus.NewGauge(prometheus.GaugeOpts{Name: "laundrybear_http_inflight_requests"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "laundrybear_transaction_transitions_total",
		Help: "Applied transaction status transitions.",
	}, []string{"from", "to"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "laundrybear_transaction_conflicts_total",
		Help: "Transaction writes rejected by the optimistic concurrency check.",
	})
	shopSaves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "laundrybear_shop_saves_total",
	}, []string{"outcome"})

	r.MustRegister(requests, latency, inflight, transitions, conflicts, shopSaves)
	return &Registry{
		reg:                   r,
		HTTPRequests:          requests,
		HTTPLatency:           latency,
		HTTPInflight:          inflight,
		TransactionTransition: transitions,
		TransactionConflicts:  conflicts,
		ShopSaves:             shopSaves,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// ObserveHTTP records one finished request
func (r *Registry) ObserveHTTP(method, route, status string, d time.Duration) {
	r.HTTPRequests.WithLabelValues(method, route, status).Inc()
	r.HTTPLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry
func Default() *Registry {
	defaultOnce.Do(func() { defaultReg = NewRegistry() })
	return defaultReg
}
