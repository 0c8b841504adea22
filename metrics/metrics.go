package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaintdesk_http_requests_total",
			Help: "Total HTTP requests by method, path, and status",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "complaintdesk_http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	assignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaintdesk_assignments_total",
			Help: "Total complaint assignments by mode",
		},
		[]string{"mode"},
	)

	assignmentsUnassigned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "complaintdesk_assignments_unassigned_total",
			Help: "Automatic assignment attempts that found no eligible agent",
		},
	)

	sweepMatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaintdesk_sla_sweep_matched_total",
			Help: "Complaints matched by SLA sweeps, by sweep kind",
		},
		[]string{"kind"},
	)

	sweepProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaintdesk_sla_sweep_processed_total",
			Help: "Complaints successfully processed by SLA sweeps, by sweep kind",
		},
		[]string{"kind"},
	)

	outboxDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaintdesk_outbox_emails_total",
			Help: "Outbox email delivery attempts by outcome",
		},
		[]string{"status"},
	)
)

// RecordAssignment increments the assignment counter for a mode
func RecordAssignment(mode string) {
	assignmentsTotal.WithLabelValues(mode).Inc()
}

// RecordUnassigned increments the no-eligible-agent counter
func RecordUnassigned() {
	assignmentsUnassigned.Inc()
}

// RecordSweep records matched and processed counts for one sweep run
func RecordSweep(kind string, matched, processed int) {
	sweepMatched.WithLabelValues(kind).Add(float64(matched))
	sweepProcessed.WithLabelValues(kind).Add(float64(processed))
}

// RecordOutboxDelivery records one outbox delivery attempt outcome
func RecordOutboxDelivery(status string) {
	outboxDelivered.WithLabelValues(status).Inc()
}

// Handler returns the Prometheus scrape endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// statusRecorder captures the response status for request metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware instruments HTTP handlers with request count and latency
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
