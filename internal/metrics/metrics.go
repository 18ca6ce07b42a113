// Package metrics holds the Prometheus collectors exported by practix.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ContentResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practix_content_resolved_total",
			Help: "Problems resolved, by content source",
		},
		[]string{"source"},
	)

	GenerationAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practix_generation_attempts_total",
			Help: "Content generation attempts, by outcome",
		},
		[]string{"outcome"},
	)

	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practix_llm_requests_total",
			Help: "LLM requests, by model, purpose and status",
		},
		[]string{"model", "purpose", "status"},
	)

	LLMLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "practix_llm_request_duration_seconds",
			Help:    "Duration of LLM requests",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"model", "purpose"},
	)

	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practix_submissions_total",
			Help: "Answer submissions, by outcome",
		},
		[]string{"outcome"},
	)

	SetsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practix_sets_created_total",
			Help: "Problem sets persisted, by kind",
		},
		[]string{"kind"},
	)

	DuplicateSetsSuppressed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "practix_duplicate_sets_suppressed_total",
			Help: "Freshly composed daily sets discarded because one already existed",
		},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practix_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "practix_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 15},
		},
		[]string{"method", "endpoint"},
	)
)

// Submission outcomes.
const (
	OutcomeCorrect      = "correct"
	OutcomeIncorrect    = "incorrect"
	OutcomeUndetermined = "undetermined"
	OutcomeSkipped      = "skipped"
	OutcomeDuplicate    = "duplicate"
)

var registerOnce sync.Once

// Init registers every collector with the default registry. Safe to call
// more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ContentResolved,
			GenerationAttempts,
			LLMRequests,
			LLMLatency,
			Submissions,
			SetsCreated,
			DuplicateSetsSuppressed,
			HTTPRequests,
			HTTPDuration,
		)
	})
}

// Middleware records request counts and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
