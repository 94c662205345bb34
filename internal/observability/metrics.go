package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every custom metric of the service.
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Auth Metrics
	AuthAttemptsTotal    *prometheus.CounterVec
	TokensIssuedTotal    prometheus.Counter
	TokenRejectionsTotal *prometheus.CounterVec
	UserMutationsTotal   *prometheus.CounterVec

	// Cache (Redis) Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Queue (RabbitMQ) Metrics
	QueueMessagesPublished *prometheus.CounterVec
	QueueMessagesConsumed  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		AuthAttemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_attempts_total",
				Help: "Total number of authentication attempts",
			},
			[]string{"result"}, // success, user_not_found, wrong_password, error
		),

		TokensIssuedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tokens_issued_total",
				Help: "Total number of tokens issued",
			},
		),

		TokenRejectionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "token_rejections_total",
				Help: "Total number of rejected tokens at the auth gate",
			},
			[]string{"reason"}, // missing, expired, invalid
		),

		UserMutationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "user_mutations_total",
				Help: "Total number of user record mutations",
			},
			[]string{"action"}, // created, updated, deleted
		),

		CacheHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"key_type"},
		),

		CacheMissesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"key_type"},
		),

		QueueMessagesPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queue_messages_published_total",
				Help: "Total number of messages published to the queue",
			},
			[]string{"queue_name"},
		),

		QueueMessagesConsumed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queue_messages_consumed_total",
				Help: "Total number of messages consumed from the queue",
			},
			[]string{"queue_name"},
		),
	}
}

// GlobalMetrics is the process-wide metrics instance, nil until InitMetrics runs.
var GlobalMetrics *Metrics

func InitMetrics() {
	GlobalMetrics = NewMetrics()
}

// The helpers below are no-ops when metrics are not initialized, so callers
// never have to care whether the process registered a collector.

func IncAuthAttempt(result string) {
	if GlobalMetrics != nil {
		GlobalMetrics.AuthAttemptsTotal.WithLabelValues(result).Inc()
	}
}

func IncTokenIssued() {
	if GlobalMetrics != nil {
		GlobalMetrics.TokensIssuedTotal.Inc()
	}
}

func IncTokenRejection(reason string) {
	if GlobalMetrics != nil {
		GlobalMetrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
	}
}

func IncUserMutation(action string) {
	if GlobalMetrics != nil {
		GlobalMetrics.UserMutationsTotal.WithLabelValues(action).Inc()
	}
}

func IncCacheHit(keyType string) {
	if GlobalMetrics != nil {
		GlobalMetrics.CacheHitsTotal.WithLabelValues(keyType).Inc()
	}
}

func IncCacheMiss(keyType string) {
	if GlobalMetrics != nil {
		GlobalMetrics.CacheMissesTotal.WithLabelValues(keyType).Inc()
	}
}

func IncQueuePublished(queueName string) {
	if GlobalMetrics != nil {
		GlobalMetrics.QueueMessagesPublished.WithLabelValues(queueName).Inc()
	}
}

func IncQueueConsumed(queueName string) {
	if GlobalMetrics != nil {
		GlobalMetrics.QueueMessagesConsumed.WithLabelValues(queueName).Inc()
	}
}
