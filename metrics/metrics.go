// Package metrics exposes Prometheus instrumentation for the storefront.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	Requests          *prometheus.CounterVec
	LatencyMS         *prometheus.HistogramVec
	CheckoutAttempts  *prometheus.CounterVec
	PaymentsConfirmed prometheus.Counter
	OrdersPlaced      prometheus.Counter
	Generations       *prometheus.CounterVec
	ActiveSessions    prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tote",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tote",
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
		CheckoutAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tote",
			Name:      "checkout_attempts_total",
			Help:      "Order placement attempts by outcome.",
		}, []string{"outcome"}),
		PaymentsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tote",
			Name:      "payments_confirmed_total",
			Help:      "Successful payment confirmations.",
		}),
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tote",
			Name:      "orders_placed_total",
			Help:      "Orders accepted by the print shop.",
		}),
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tote",
			Name:      "design_generations_total",
			Help:      "Design generation requests by outcome.",
		}, []string{"outcome"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tote",
			Name:      "active_sessions",
			Help:      "Browsing sessions currently held in memory.",
		}),
	}
	reg.MustRegister(
		m.Requests, m.LatencyMS, m.CheckoutAttempts, m.PaymentsConfirmed,
		m.OrdersPlaced, m.Generations, m.ActiveSessions,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
