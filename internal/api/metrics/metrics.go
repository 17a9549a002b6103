// Package metrics defines and registers all custom Prometheus metrics for the
// BGF dashboard API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry on package init via
// promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bgf"

// ── Authentication ────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Labels:
//   - kind: "staff" or "user"
//   - result: "success", "invalid", "rate_limited"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by kind and result.",
	},
	[]string{"kind", "result"},
)

// AccessCodeLookupsTotal counts where staff access code lookups were served from.
// Label:
//   - source: "cache", "store", or "fallback"
var AccessCodeLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_code_lookups_total",
		Help:      "Total number of staff access code lookups, by source.",
	},
	[]string{"source"},
)

// TokenVerificationsTotal counts staff token verification outcomes.
// Label:
//   - result: "ok", "missing", "malformed", "expired", "invalid", "not_staff"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "staff_token_verifications_total",
		Help:      "Total number of staff token verifications, by result.",
	},
	[]string{"result"},
)

// ── Workflow ──────────────────────────────────────────────────────────────────

// RequestsCreatedTotal counts newly submitted requests.
// Label:
//   - type: the request type (e.g. "funding")
var RequestsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_created_total",
		Help:      "Total number of requests submitted, by type.",
	},
	[]string{"type"},
)

// StageTransitionsTotal counts applied stage transitions.
// Labels:
//   - type: request type
//   - to: the new stage
var StageTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stage_transitions_total",
		Help:      "Total number of workflow stage transitions applied.",
	},
	[]string{"type", "to"},
)

// StageTransitionErrorsTotal counts rejected or failed transitions.
// Label:
//   - reason: "invalid_transition", "forbidden", "not_found", "store"
var StageTransitionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stage_transition_errors_total",
		Help:      "Total number of workflow stage transitions that were rejected or failed.",
	},
	[]string{"reason"},
)

// DelegationsTotal counts request reassignments.
var DelegationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delegations_total",
		Help:      "Total number of request delegations.",
	},
)

// ── Notifications ─────────────────────────────────────────────────────────────

// NotificationsCreatedTotal counts in-app notifications.
// Label:
//   - category: notification category (e.g. "workflow")
var NotificationsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_created_total",
		Help:      "Total number of notifications created, by category.",
	},
	[]string{"category"},
)

// FanoutErrorsTotal counts notification fan-out failures.
// Label:
//   - channel: "realtime", "email", or "workflow"
var FanoutErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_fanout_errors_total",
		Help:      "Total number of notification fan-out failures, by channel.",
	},
	[]string{"channel"},
)

// EmailsSentTotal counts companion emails by outcome ("sent", "failed").
var EmailsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_sent_total",
		Help:      "Total number of companion emails, by result.",
	},
	[]string{"result"},
)

// EmailQueueDepth tracks the emails waiting in each dispatcher worker channel.
var EmailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "email_queue_depth",
		Help:      "Current number of emails pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EmailSendDuration measures SMTP delivery time.
var EmailSendDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "email_send_duration_seconds",
		Help:      "Duration of companion email delivery.",
		Buckets:   prometheus.DefBuckets,
	},
)

// RealtimeClients is the number of connected notification stream clients.
var RealtimeClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_clients",
		Help:      "Current number of connected notification stream clients.",
	},
)
