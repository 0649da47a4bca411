package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	httpRequestsTotal   *prometheus.CounterVec
	httpLatencySeconds  *prometheus.HistogramVec
	passIssuanceTotal   *prometheus.CounterVec
	passRedemptionTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campuspass_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "campuspass_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		passIssuanceTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campuspass_pass_issuance_total",
			Help: "Pass issuance outcomes (issued, reused, failed).",
		}, []string{"outcome"})

		passRedemptionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campuspass_pass_redemption_total",
			Help: "QR validation outcomes (success, already_used, not_found, invalid_format).",
		}, []string{"outcome"})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, passIssuanceTotal, passRedemptionTotal)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// PassIssuance exposes the issuance outcome counter.
func PassIssuance() *prometheus.CounterVec {
	RegisterMetrics()
	return passIssuanceTotal
}

// PassRedemption exposes the redemption outcome counter.
func PassRedemption() *prometheus.CounterVec {
	RegisterMetrics()
	return passRedemptionTotal
}
