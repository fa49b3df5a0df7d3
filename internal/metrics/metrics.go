package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ExchangeMetrics counts submissions by outcome and times the matching path.
type ExchangeMetrics struct {
	OrdersSubmitted *prometheus.CounterVec
	OrdersCancelled prometheus.Counter
	TradesExecuted  prometheus.Counter
	MatchDuration   prometheus.Histogram
}

func NewExchangeMetrics(registerer prometheus.Registerer) *ExchangeMetrics {
	m := &ExchangeMetrics{
		OrdersSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "market",
			Name:      "orders_submitted_total",
			Help:      "Submitted orders by side, kind and outcome.",
		}, []string{"side", "kind", "outcome"}),
		OrdersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "market",
			Name:      "orders_cancelled_total",
			Help:      "Successfully cancelled orders.",
		}),
		TradesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "market",
			Name:      "trades_executed_total",
			Help:      "Trades produced by the matching engine.",
		}),
		MatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "market",
			Name:      "match_duration_seconds",
			Help:      "Time spent inside the matching engine per submission.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	registerer.MustRegister(
		m.OrdersSubmitted,
		m.OrdersCancelled,
		m.TradesExecuted,
		m.MatchDuration,
	)

	return m
}
