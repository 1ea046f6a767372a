package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adoptoposs",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests grouped by route and status code.",
		},
		[]string{"method", "route", "code"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "adoptoposs",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency grouped by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	projectsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "adoptoposs",
			Name:      "projects_created_total",
			Help:      "Total number of projects submitted.",
		},
	)
	recommendationLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adoptoposs",
			Name:      "recommendation_lookups_total",
			Help:      "Total number of recommended tag lookups grouped by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		projectsCreatedTotal,
		recommendationLookupsTotal,
	)
}

// Instrument records the count and latency of requests served by next,
// labelled by their chi route pattern.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func observeRecommendation(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	recommendationLookupsTotal.WithLabelValues(result).Inc()
}
