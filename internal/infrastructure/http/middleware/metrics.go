package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/crewrelief/crewrelief/internal/application/ports"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crewrelief_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	authAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewrelief_auth_attempts_total",
			Help: "Total auth attempts by event and outcome",
		},
		[]string{"event", "success"},
	)
	matchSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewrelief_match_searches_total",
			Help: "Completed match searches by date mode",
		},
		[]string{"mode"},
	)
	matchCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crewrelief_match_candidates",
			Help:    "Candidates returned per match search",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"mode"},
	)
	candidatesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewrelief_match_candidates_dropped_total",
			Help: "Candidates dropped from a search because their owner could not be loaded",
		},
		[]string{"reason"},
	)
	statusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewrelief_status_transitions_total",
			Help: "Status transitions by target status and outcome",
		},
		[]string{"to", "success"},
	)
)

// PrometheusMiddleware records request duration labelled by route pattern.
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(ww.Status())
		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

// RecordAuthAttempt records an auth event for Prometheus.
func RecordAuthAttempt(event string, success bool) {
	authAttempts.WithLabelValues(event, strconv.FormatBool(success)).Inc()
}

// PromMatchMetrics exports matching and status counters to Prometheus.
type PromMatchMetrics struct{}

func (PromMatchMetrics) SearchCompleted(mode string, candidates int) {
	matchSearches.WithLabelValues(mode).Inc()
	matchCandidates.WithLabelValues(mode).Observe(float64(candidates))
}

func (PromMatchMetrics) CandidateDropped(reason string) {
	candidatesDropped.WithLabelValues(reason).Inc()
}

func (PromMatchMetrics) StatusChanged(to string, ok bool) {
	statusTransitions.WithLabelValues(to, strconv.FormatBool(ok)).Inc()
}

var _ ports.MatchMetrics = PromMatchMetrics{}
