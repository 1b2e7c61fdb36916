package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PaymentMetrics collects pool and token lifecycle metrics.
type PaymentMetrics struct {
	TokensCreatedTotal   prometheus.CounterVec
	TokensFinishedTotal  prometheus.CounterVec
	PoolExhaustedTotal   prometheus.Counter
	SlotsLockedGauge     prometheus.Gauge
	SlotsAvailableGauge  prometheus.Gauge
	SlotAcquireDuration  prometheus.Histogram
	LeasesReclaimedTotal prometheus.Counter
	TokensExpiredTotal   prometheus.Counter
	WebhooksTotal        prometheus.CounterVec
}

func NewPaymentMetrics() *PaymentMetrics {
	return &PaymentMetrics{
		TokensCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_tokens_created_total",
				Help: "Total payment tokens created",
			},
			[]string{"currency"},
		),

		TokensFinishedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_tokens_finished_total",
				Help: "Total payment tokens that reached a terminal status",
			},
			[]string{"status"},
		),

		PoolExhaustedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payment_pool_exhausted_total",
				Help: "Total checkout attempts rejected because no callback slot was available",
			},
		),

		SlotsLockedGauge: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "payment_pool_slots_locked",
				Help: "Callback slots currently leased",
			},
		),

		SlotsAvailableGauge: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "payment_pool_slots_available",
				Help: "Callback slots currently free",
			},
		),

		SlotAcquireDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "payment_pool_acquire_duration_seconds",
				Help:    "Time spent acquiring a callback slot",
				Buckets: prometheus.DefBuckets,
			},
		),

		LeasesReclaimedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payment_pool_leases_reclaimed_total",
				Help: "Stale leases reclaimed by the sweeper",
			},
		),

		TokensExpiredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payment_tokens_expired_total",
				Help: "Tokens failed by the sweeper after TTL lapsed",
			},
		),

		WebhooksTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_webhooks_total",
				Help: "Provider webhooks by event type and verification result",
			},
			[]string{"event_type", "result"},
		),
	}
}
