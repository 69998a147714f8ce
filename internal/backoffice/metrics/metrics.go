// Package metrics defines and registers the Prometheus metrics for the
// back-office credential service. It is the single source of truth for
// metric names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "backoffice"

// RegistrationsTotal counts account creations by outcome.
// Label:
//   - result: "success", "conflict", "invalid"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "unknown_user", "bad_password"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// PasswordResetsTotal counts reset-flow transitions.
// Label:
//   - stage: "requested" (token issued + mailed), "completed" (token
//     consumed), "expired", "invalid_token"
var PasswordResetsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_resets_total",
		Help:      "Total number of password-reset flow events, by stage.",
	},
	[]string{"stage"},
)

// MailErrorsTotal counts outbound mail dispatch failures.
var MailErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_errors_total",
		Help:      "Total number of outbound mail dispatch failures.",
	},
)
