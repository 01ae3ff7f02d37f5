package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Policy metrics
	PolicyEditsApplied prometheus.Counter
	PolicyEditNoOps    prometheus.Counter
	PolicyEditErrors   *prometheus.CounterVec
	PolicyEditDuration prometheus.Histogram

	// Evaluation metrics
	Evaluations       *prometheus.CounterVec
	EvaluationFallback prometheus.Counter

	// Account metrics
	AccountsCreated   prometheus.Counter
	AccountOperations *prometheus.CounterVec

	// Credential metrics
	CredentialRotations prometheus.Counter

	// Integrity metrics
	IntegritySweeps     prometheus.Counter
	IntegrityMismatches *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Outbox metrics
	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		PolicyEditsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mercsync_policy_edits_applied_total",
			Help: "Total number of policy edits applied",
		}),
		PolicyEditNoOps: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mercsync_policy_edit_noops_total",
			Help: "Total number of idempotent policy edit replays",
		}),
		PolicyEditErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mercsync_policy_edit_errors_total",
				Help: "Total number of policy edit errors by type",
			},
			[]string{"error_type"},
		),
		PolicyEditDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mercsync_policy_edit_duration_seconds",
			Help:    "Duration of policy edit transactions",
			Buckets: prometheus.DefBuckets,
		}),

		Evaluations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mercsync_evaluations_total",
				Help: "Total number of receipt evaluations by resulting status",
			},
			[]string{"status"},
		),
		EvaluationFallback: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mercsync_evaluation_mirror_fallbacks_total",
			Help: "Total number of evaluations resolved from the account mirror",
		}),

		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mercsync_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mercsync_account_operations_total",
				Help: "Total account operations by type",
			},
			[]string{"operation"},
		),

		CredentialRotations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mercsync_credential_rotations_total",
			Help: "Total number of API key writes",
		}),

		IntegritySweeps: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mercsync_integrity_sweeps_total",
			Help: "Total number of integrity sweeps run",
		}),
		IntegrityMismatches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mercsync_integrity_mismatches_total",
				Help: "Total number of integrity mismatches found by kind",
			},
			[]string{"kind"},
		),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mercsync_http_requests_total",
				Help: "Total HTTP requests by method, path and status",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mercsync_http_request_duration_seconds",
				Help:    "HTTP request duration by method and path",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mercsync_cache_hits_total",
			Help: "Total rule cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mercsync_cache_misses_total",
			Help: "Total rule cache misses",
		}),

		AuthAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mercsync_auth_attempts_total",
				Help: "Total authentication attempts by outcome",
			},
			[]string{"outcome"},
		),
		AuthFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mercsync_auth_failures_total",
				Help: "Total authentication failures by reason",
			},
			[]string{"reason"},
		),

		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mercsync_rate_limit_hits_total",
				Help: "Total requests rejected by the rate limiter",
			},
			[]string{"path"},
		),

		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mercsync_events_published_total",
			Help: "Total outbox events published",
		}),
		PublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mercsync_publish_errors_total",
			Help: "Total outbox publish failures",
		}),
	}
}
