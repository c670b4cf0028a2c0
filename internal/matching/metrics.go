package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics groups the engine's Prometheus instruments, grounded on the
// teacher's internal/bot/metrics.go promauto pattern (one struct of
// pre-registered collectors, constructed once at startup).
type metrics struct {
	ticksTotal              prometheus.Counter
	tickDuration            prometheus.Histogram
	tradesTotal             *prometheus.CounterVec
	commissionTotal         prometheus.Counter
	pendingConfirmations    prometheus.Gauge
	negotiationsActive      prometheus.Gauge
	declinedPairsTotal      prometheus.Gauge
	advisoriesSentTotal     prometheus.Counter
	notifyFailuresTotal     *prometheus.CounterVec
	notifyQueueDroppedTotal *prometheus.CounterVec
}

func newMetrics() *metrics {
	return &metrics{
		ticksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matching_ticks_total",
			Help: "Total number of matching loop ticks executed.",
		}),
		tickDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "matching_tick_duration_seconds",
			Help:    "Duration of a full matching loop tick.",
			Buckets: prometheus.DefBuckets,
		}),
		tradesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "matching_trades_total",
			Help: "Total trades committed, labeled by match type and asset.",
		}, []string{"match_type", "asset"}),
		commissionTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matching_commission_total",
			Help: "Sum of commission collected across all committed trades.",
		}),
		pendingConfirmations: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "matching_pending_confirmations",
			Help: "Number of quantity confirmations currently in flight.",
		}),
		negotiationsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "matching_negotiations_active",
			Help: "Number of per-asset negotiation states currently open.",
		}),
		declinedPairsTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "matching_declined_pairs_total",
			Help: "Size of the process-lifetime declined-pairs suppression set.",
		}),
		advisoriesSentTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matching_competitive_bid_advisories_total",
			Help: "Total competitive-bidding advisories sent over the secondary channel.",
		}),
		notifyFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "matching_notify_failures_total",
			Help: "Total notification delivery failures, labeled by channel.",
		}, []string{"channel"}),
		notifyQueueDroppedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "matching_notify_queue_dropped_total",
			Help: "Total secondary-channel notification jobs dropped because the async dispatch queue was full, labeled by kind.",
		}, []string{"kind"}),
	}
}
