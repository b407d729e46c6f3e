// Package metrics defines the custom Prometheus metrics of the report API.
// It is the single source of truth for metric names, labels, and help
// strings. All vectors register with the default registry on package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "weather_reports"

// ── Report pipeline ───────────────────────────────────────────────────────────

// ReportsCreatedTotal counts report requests accepted by the API.
var ReportsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_created_total",
		Help:      "Total number of report requests accepted.",
	},
)

// ReportsProcessedTotal counts pipeline runs by outcome.
// Label:
//   - status: "completed", "failed" or "discarded" (report deleted mid-run or
//     its terminal status could not be written)
var ReportsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_processed_total",
		Help:      "Total number of report pipeline runs, by outcome.",
	},
	[]string{"status"},
)

// ReportProcessingDuration measures a pipeline run from dequeue to terminal status.
var ReportProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "report_processing_duration_seconds",
		Help:      "Duration of report generation from dequeue to terminal status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"status"},
)

// ReportQueueDepth tracks jobs waiting for a worker.
var ReportQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "report_queue_depth",
		Help:      "Current number of report jobs waiting in the dispatcher queue.",
	},
)

// ReportQueueRejectedTotal counts submissions refused because the queue was full.
var ReportQueueRejectedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "report_queue_rejected_total",
		Help:      "Total number of report jobs rejected due to a saturated queue.",
	},
)

// ── External services ─────────────────────────────────────────────────────────

// WeatherRequestsTotal counts calls to the weather provider.
// Label:
//   - result: "ok", "transport_error", "bad_status" or "bad_payload"
var WeatherRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "weather_requests_total",
		Help:      "Total number of weather provider requests, by result.",
	},
	[]string{"result"},
)

// EmailNotificationsTotal counts report-ready emails.
// Label:
//   - result: "sent" or "failed"
var EmailNotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "email_notifications_total",
		Help:      "Total number of report notification emails, by result.",
	},
	[]string{"result"},
)

// ── Auth ──────────────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokensBlacklistedTotal counts successful logouts.
var TokensBlacklistedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_blacklisted_total",
		Help:      "Total number of session tokens revoked via logout.",
	},
)
