package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the pronunciation trainer.
// The Record* methods accept a nil receiver, recording nothing.
type Metrics struct {
	// Pronunciation check metrics
	ChecksTotal     prometheus.Counter
	ChecksCorrect   prometheus.Counter
	ChecksIncorrect prometheus.Counter
	CheckFailures   *prometheus.CounterVec
	PayloadSize     prometheus.Histogram
	AudioDuration   prometheus.Histogram

	// Recognition gateway metrics
	RecognitionRequests  prometheus.Counter
	RecognitionSuccesses prometheus.Counter
	RecognitionFailures  prometheus.Counter
	RecognitionDuration  prometheus.Histogram
	RecognitionRetries   prometheus.Counter
	RecognitionNoSpeech  prometheus.Counter

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Pronunciation check metrics
		ChecksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trainer_checks_total",
			Help: "Total number of pronunciation checks performed",
		}),
		ChecksCorrect: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trainer_checks_correct_total",
			Help: "Total number of checks judged correct",
		}),
		ChecksIncorrect: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trainer_checks_incorrect_total",
			Help: "Total number of checks judged incorrect",
		}),
		CheckFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trainer_check_failures_total",
			Help: "Total number of checks that failed before a verdict",
		}, []string{"reason"}),
		PayloadSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "trainer_audio_payload_bytes",
			Help:    "Size of submitted WAV payloads in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 12), // 1KB to ~4MB
		}),
		AudioDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "trainer_audio_duration_seconds",
			Help:    "Duration of submitted recordings",
			Buckets: prometheus.LinearBuckets(0.5, 0.5, 8), // 0.5s to 4s
		}),

		// Recognition gateway metrics
		RecognitionRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trainer_recognition_requests_total",
			Help: "Total number of recognition requests sent",
		}),
		RecognitionSuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trainer_recognition_successes_total",
			Help: "Total number of successful recognition requests",
		}),
		RecognitionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trainer_recognition_failures_total",
			Help: "Total number of failed recognition requests",
		}),
		RecognitionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "trainer_recognition_duration_seconds",
			Help:    "Duration of recognition requests",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~2 minutes
		}),
		RecognitionRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trainer_recognition_retries_total",
			Help: "Total number of recognition request retries",
		}),
		RecognitionNoSpeech: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trainer_recognition_no_speech_total",
			Help: "Total number of recognitions that found no speech",
		}),

		// HTTP API metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trainer_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trainer_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trainer_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordCheck records a completed pronunciation check and its verdict
func (m *Metrics) RecordCheck(correct bool, payloadBytes int, durationSeconds float64) {
	if m == nil {
		return
	}
	m.ChecksTotal.Inc()
	if correct {
		m.ChecksCorrect.Inc()
	} else {
		m.ChecksIncorrect.Inc()
	}
	m.PayloadSize.Observe(float64(payloadBytes))
	m.AudioDuration.Observe(durationSeconds)
}

// RecordCheckFailure records a check that ended before reaching a verdict
func (m *Metrics) RecordCheckFailure(reason string) {
	if m == nil {
		return
	}
	m.ChecksTotal.Inc()
	m.CheckFailures.WithLabelValues(reason).Inc()
}

// RecordRecognitionRequest increments the recognition requests counter
func (m *Metrics) RecordRecognitionRequest() {
	if m == nil {
		return
	}
	m.RecognitionRequests.Inc()
}

// RecordRecognitionSuccess records a successful recognition
func (m *Metrics) RecordRecognitionSuccess(durationSeconds float64) {
	if m == nil {
		return
	}
	m.RecognitionSuccesses.Inc()
	m.RecognitionDuration.Observe(durationSeconds)
}

// RecordRecognitionFailure records a failed recognition
func (m *Metrics) RecordRecognitionFailure(durationSeconds float64) {
	if m == nil {
		return
	}
	m.RecognitionFailures.Inc()
	m.RecognitionDuration.Observe(durationSeconds)
}

// RecordRecognitionRetry increments the retry counter
func (m *Metrics) RecordRecognitionRetry() {
	if m == nil {
		return
	}
	m.RecognitionRetries.Inc()
}

// RecordRecognitionNoSpeech increments the no-speech counter
func (m *Metrics) RecordRecognitionNoSpeech() {
	if m == nil {
		return
	}
	m.RecognitionNoSpeech.Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	if m == nil {
		return
	}
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
