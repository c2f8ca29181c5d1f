// Package metrics holds the Prometheus collectors for the quiz service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline outcomes used as the outcome label.
const (
	OutcomeSuccess          = "success"
	OutcomeInvalidInput     = "invalid_input"
	OutcomeFetchFailed      = "fetch_failed"
	OutcomeParseFailed      = "parse_failed"
	OutcomeScrapeTimeout    = "scrape_timeout"
	OutcomeDeadlineExceeded = "deadline_exceeded"
	OutcomeStorageFailed    = "storage_failed"
	OutcomeError            = "error"
)

var (
	// GenerationsTotal counts pipeline runs by outcome
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_generations_total",
			Help: "Total number of quiz generation requests by outcome",
		},
		[]string{"outcome"},
	)

	// StageDuration measures each pipeline stage
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quiz_pipeline_stage_duration_seconds",
			Help:    "Duration of quiz pipeline stages in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 4, 6, 8},
		},
		[]string{"stage"},
	)

	// QuestionsGenerated observes how many questions each quiz carries
	QuestionsGenerated = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_questions_generated",
			Help:    "Number of questions in generated quizzes",
			Buckets: prometheus.LinearBuckets(1, 1, 7),
		},
	)

	// SynthesisFallbacksTotal counts emergency quizzes substituted after a synthesis timeout
	SynthesisFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_synthesis_fallbacks_total",
			Help: "Total number of emergency fallback quizzes served",
		},
	)

	// PublishFailuresTotal counts event delivery failures per publisher
	PublishFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_publish_failures_total",
			Help: "Total number of quiz event publish failures",
		},
		[]string{"publisher"},
	)

	// HTTPRequestsTotal counts API requests by method, route pattern and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures API request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordGeneration counts one pipeline run.
func RecordGeneration(outcome string) {
	GenerationsTotal.WithLabelValues(outcome).Inc()
}

// RecordStage observes the duration of a pipeline stage.
func RecordStage(stage string, d time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordQuestions observes the question count of a quiz.
func RecordQuestions(n int) {
	QuestionsGenerated.Observe(float64(n))
}

// RecordSynthesisFallback counts one emergency quiz.
func RecordSynthesisFallback() {
	SynthesisFallbacksTotal.Inc()
}

// RecordPublishFailure counts a failed delivery for publisher.
func RecordPublishFailure(publisher string) {
	PublishFailuresTotal.WithLabelValues(publisher).Inc()
}

// RecordHTTPRequest records an API request.
func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
