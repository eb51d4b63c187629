package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Workflow metrics
	TransactionsCommitted *prometheus.CounterVec
	TransactionsRejected  *prometheus.CounterVec
	TransactionAmount     prometheus.Histogram
	ValidationFailures    *prometheus.CounterVec
	BusyRejections        prometheus.Counter

	// Ledger metrics
	LedgerTotalBalance prometheus.Gauge
	BalanceDrift       prometheus.Counter

	// Gateway metrics
	GatewayDuration *prometheus.HistogramVec
	GatewayErrors   *prometheus.CounterVec
	GatewayMode     *prometheus.GaugeVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Redis metrics
	RedisErrors *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter

	// UI event metrics
	EventsDropped prometheus.Counter
}

// New creates all metrics and registers them with reg.
// A nil reg registers with the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Workflow metrics
		TransactionsCommitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankdash_transactions_committed_total",
				Help: "Total number of committed transactions by kind and gateway mode",
			},
			[]string{"kind", "mode"},
		),
		TransactionsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankdash_transactions_rejected_total",
				Help: "Total number of rejected drafts by reason",
			},
			[]string{"reason"},
		),
		TransactionAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bankdash_transaction_amount",
			Help:    "Committed transaction amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankdash_validation_failures_total",
				Help: "Total draft validation failures by error",
			},
			[]string{"error"},
		),
		BusyRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankdash_workflow_busy_total",
			Help: "Submissions refused because another draft was in flight",
		}),

		// Ledger metrics
		LedgerTotalBalance: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bankdash_ledger_total_balance",
			Help: "Sum of all account balances after the last commit",
		}),
		BalanceDrift: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankdash_balance_drift_total",
			Help: "Receipts whose remote balance disagreed with the local ledger",
		}),

		// Gateway metrics
		GatewayDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankdash_gateway_duration_seconds",
				Help:    "Duration of gateway submissions",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		GatewayErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankdash_gateway_errors_total",
				Help: "Total gateway errors by reason",
			},
			[]string{"reason"},
		),
		GatewayMode: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bankdash_gateway_mode",
				Help: "Selected gateway mode (1 = active)",
			},
			[]string{"mode"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankdash_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankdash_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bankdash_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		// Redis metrics
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankdash_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankdash_rate_limit_hits_total",
			Help: "Total rate limit hits",
		}),

		// UI event metrics
		EventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankdash_ui_events_dropped_total",
			Help: "UI events dropped because the queue was full",
		}),
	}
}

// SetGatewayMode marks mode as the active gateway mode.
func (m *Metrics) SetGatewayMode(mode string) {
	for _, candidate := range []string{"remote", "simulation"} {
		value := 0.0
		if candidate == mode {
			value = 1
		}
		m.GatewayMode.WithLabelValues(candidate).Set(value)
	}
}
