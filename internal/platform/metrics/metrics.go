package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ParticipantsCreated prometheus.Counter
	EnrollmentAttempts  prometheus.Counter
	EnrollmentOutcomes  *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ParticipantsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "participant_service_participants_created_total",
			Help: "Total number of participants created in the system",
		}),
		EnrollmentAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "participant_service_enrollment_attempts_total",
			Help: "Total number of enrollment attempts processed",
		}),
		EnrollmentOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "participant_service_enrollment_outcomes_total",
			Help: "Enrollment outcomes by status keyword",
		}, []string{"status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "participant_service_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// IncrementParticipantsCreated increments the participants created counter by 1.
func (m *Metrics) IncrementParticipantsCreated() {
	m.ParticipantsCreated.Inc()
}

// IncrementEnrollmentAttempts increments the enrollment attempts counter by 1.
func (m *Metrics) IncrementEnrollmentAttempts() {
	m.EnrollmentAttempts.Inc()
}

// ObserveEnrollmentOutcome records one enrollment outcome for the given status.
func (m *Metrics) ObserveEnrollmentOutcome(status string) {
	m.EnrollmentOutcomes.WithLabelValues(status).Inc()
}

// ObserveRequestDuration records one HTTP request latency sample.
func (m *Metrics) ObserveRequestDuration(method, route string, d time.Duration) {
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
