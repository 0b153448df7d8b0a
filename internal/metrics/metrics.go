// Package metrics はPrometheusのコレクタをまとめる。
// nilの*Metricsでも呼び出せる（計測なし）。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

type Metrics struct {
	registry *prometheus.Registry

	ordersCreated     *prometheus.CounterVec
	orderTransitions  *prometheus.CounterVec
	billsCreated      prometheus.Counter
	creditPayments    prometheus.Counter
	creditPaymentSum  prometheus.Counter
	notifications     *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	reportCacheLookup *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		ordersCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_orders_created_total",
				Help: "Orders created by order type",
			},
			[]string{"order_type"},
		),
		orderTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_order_status_transitions_total",
				Help: "Order status transitions",
			},
			[]string{"from", "to"},
		),
		billsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_bills_created_total",
			Help: "Bills created",
		}),
		creditPayments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_credit_payments_total",
			Help: "Payments received on credit accounts",
		}),
		creditPaymentSum: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_credit_payment_amount_total",
			Help: "Sum of payments received on credit accounts",
		}),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_notifications_total",
				Help: "Notification dispatch results",
			},
			[]string{"result"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pos_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		reportCacheLookup: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_report_cache_lookups_total",
				Help: "Report cache hits and misses",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ordersCreated,
		m.orderTransitions,
		m.billsCreated,
		m.creditPayments,
		m.creditPaymentSum,
		m.notifications,
		m.httpRequests,
		m.httpDuration,
		m.reportCacheLookup,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// /metrics 用
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) OrderCreated(orderType string) {
	if m == nil {
		return
	}
	m.ordersCreated.WithLabelValues(orderType).Inc()
}

func (m *Metrics) OrderTransition(from, to string) {
	if m == nil {
		return
	}
	m.orderTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) BillCreated() {
	if m == nil {
		return
	}
	m.billsCreated.Inc()
}

// 金額は計測用にfloatへ変換する（集計値には使わない）
func (m *Metrics) CreditPayment(amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.creditPayments.Inc()
	m.creditPaymentSum.Add(amount.InexactFloat64())
}

func (m *Metrics) NotificationResult(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) ReportCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.reportCacheLookup.WithLabelValues(result).Inc()
}
