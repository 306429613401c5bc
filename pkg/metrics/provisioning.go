package metrics

import "github.com/prometheus/client_golang/prometheus"

// Counter metrics for the registration and auth flows
var (
	// LoginCounter counts login attempts
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_login_total",
			Help: "Total number of login attempts",
		},
	)

	// RegistrationCounter counts store registration attempts
	RegistrationCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "store_registrations_total",
			Help: "Total number of store registration attempts",
		},
	)

	// RegistrationOutcomeCounter counts registrations by terminal saga state
	RegistrationOutcomeCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_registration_outcomes_total",
			Help: "Total number of store registrations by terminal outcome",
		},
		[]string{"outcome"}, // complete, failed, rolled_back, compensation_failed
	)

	// AuditWriteFailureCounter counts swallowed activity-log write failures
	AuditWriteFailureCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_write_failures_total",
			Help: "Total number of non-fatal activity log write failures",
		},
	)

	// AuthErrorCounter counts authentication errors by type
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(
		LoginCounter,
		RegistrationCounter,
		RegistrationOutcomeCounter,
		AuditWriteFailureCounter,
		AuthErrorCounter,
	)
}

// RecordRegistrationOutcome increments the outcome counter for a terminal saga state
func RecordRegistrationOutcome(outcome string) {
	RegistrationOutcomeCounter.WithLabelValues(outcome).Inc()
}

// RecordAuthError increments the auth error counter for the given error type
func RecordAuthError(errorType string) {
	AuthErrorCounter.WithLabelValues(errorType).Inc()
}
