// Package metrics defines and registers all custom Prometheus metrics for the
// taskboard API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Collectors are registered with the default registry through promauto when
// the package is first imported. HTTP request metrics come from echoprometheus
// and are not declared here.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskboard"

// ── Session metrics ───────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register/login attempts.
// Labels:
//   - operation: "register" or "login"
//   - result: "success", "invalid_credentials", "user_exists", "invalid_input", "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register and login attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// SessionVerificationsTotal counts Auth gate decisions.
// Label:
//   - result: "ok", "missing", "invalid", "revoked"
var SessionVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_verifications_total",
		Help:      "Total number of session token checks, by outcome.",
	},
	[]string{"result"},
)

// CSRFRejectionsTotal counts requests refused by the CSRF gate.
// Label:
//   - reason: "missing_header", "missing_cookie", "bad_cookie_signature", "mismatch", "bad_token"
var CSRFRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "csrf_rejections_total",
		Help:      "Total number of state-changing requests rejected by CSRF validation.",
	},
	[]string{"reason"},
)

// CSRFTokensIssuedTotal counts minted CSRF tokens.
// Label:
//   - trigger: "login", "register", "check"
var CSRFTokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "csrf_tokens_issued_total",
		Help:      "Total number of CSRF tokens minted, by the endpoint that minted them.",
	},
	[]string{"trigger"},
)

// ── Resource metrics ──────────────────────────────────────────────────────────

// MutationsTotal counts successful writes.
// Labels:
//   - resource: "task" or "todo"
//   - operation: "create", "update", "delete"
var MutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of successful task and todo writes.",
	},
	[]string{"resource", "operation"},
)
