package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transfer metrics
	TransfersCreated   prometheus.Counter
	TransfersCancelled prometheus.Counter
	TransferDuration   prometheus.Histogram
	TransferAmount     prometheus.Histogram
	TransferRejections *prometheus.CounterVec

	// Card metrics
	CardsIssued    prometheus.Counter
	CardsExpired   prometheus.Counter
	CardOperations *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Database metrics
	DBRetries prometheus.Counter

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Transfer metrics
		TransfersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardvault_transfers_created_total",
			Help: "Total number of transfers executed",
		}),
		TransfersCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardvault_transfers_cancelled_total",
			Help: "Total number of transfers cancelled",
		}),
		TransferDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cardvault_transfer_duration_seconds",
			Help:    "Duration of transfer operations",
			Buckets: prometheus.DefBuckets,
		}),
		TransferAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cardvault_transfer_amount",
			Help:    "Transfer amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		TransferRejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardvault_transfer_rejections_total",
				Help: "Total number of rejected transfer requests by reason",
			},
			[]string{"reason"},
		),

		// Card metrics
		CardsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardvault_cards_issued_total",
			Help: "Total number of cards issued",
		}),
		CardsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardvault_cards_expired_total",
			Help: "Total number of cards marked expired by the sweep",
		}),
		CardOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardvault_card_operations_total",
				Help: "Total card operations by type",
			},
			[]string{"operation"},
		),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardvault_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cardvault_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cardvault_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		// Database metrics
		DBRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardvault_db_retries_total",
			Help: "Total number of retried database transactions",
		}),

		// Authentication metrics
		AuthFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardvault_auth_failures_total",
				Help: "Total authentication failures by reason",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardvault_rate_limit_hits_total",
				Help: "Total requests rejected by the rate limiter",
			},
			[]string{"path"},
		),
	}
}
