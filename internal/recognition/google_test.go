package recognition

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/metrics"
)

// promauto registers against the default registry, so the package's tests
// share one Metrics instance.
var testMetrics = metrics.NewMetrics()

func newTestGoogleClient(t *testing.T, endpoint string) *GoogleClient {
	t.Helper()
	client, err := NewGoogleClient(GoogleConfig{
		Endpoint:   endpoint,
		APIKey:     "test-key",
		Timeout:    2 * time.Second,
		MaxRetries: 0,
	}, testMetrics)
	if err != nil {
		t.Fatalf("NewGoogleClient failed: %v", err)
	}
	return client
}

func TestNewGoogleClientValidation(t *testing.T) {
	if _, err := NewGoogleClient(GoogleConfig{}, testMetrics); err == nil {
		t.Error("Expected error for empty API key")
	}

	client, err := NewGoogleClient(GoogleConfig{APIKey: "k"}, testMetrics)
	if err != nil {
		t.Fatalf("NewGoogleClient failed: %v", err)
	}
	if client.config.Endpoint != defaultGoogleEndpoint {
		t.Errorf("Endpoint = %q, want default", client.config.Endpoint)
	}
	if client.config.PhraseBoost != 20 {
		t.Errorf("PhraseBoost = %v, want 20", client.config.PhraseBoost)
	}
	if client.config.MaxConcurrent != 10 {
		t.Errorf("MaxConcurrent = %d, want 10", client.config.MaxConcurrent)
	}
}

func TestGoogleRecognizeSuccess(t *testing.T) {
	wavData := []byte("fake wav payload")

	var captured googleRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("API key query parameter = %q, want %q", r.URL.Query().Get("key"), "test-key")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"alternatives":[{"transcript":"cá","confidence":0.93}]}]}`))
	}))
	defer server.Close()

	client := newTestGoogleClient(t, server.URL)

	result, err := client.Recognize(context.Background(), wavData, "vi-VN", "cá")
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	if result.Text != "cá" {
		t.Errorf("Text = %q, want %q", result.Text, "cá")
	}
	if result.Confidence != 0.93 {
		t.Errorf("Confidence = %v, want 0.93", result.Confidence)
	}

	cfg := captured.Config
	if cfg.Encoding != "LINEAR16" {
		t.Errorf("Encoding = %q, want LINEAR16", cfg.Encoding)
	}
	if cfg.SampleRateHertz != 16000 {
		t.Errorf("SampleRateHertz = %d, want 16000", cfg.SampleRateHertz)
	}
	if cfg.LanguageCode != "vi-VN" {
		t.Errorf("LanguageCode = %q, want vi-VN", cfg.LanguageCode)
	}
	if cfg.MaxAlternatives != 1 {
		t.Errorf("MaxAlternatives = %d, want 1", cfg.MaxAlternatives)
	}
	if len(cfg.SpeechContexts) != 1 || len(cfg.SpeechContexts[0].Phrases) != 1 ||
		cfg.SpeechContexts[0].Phrases[0] != "cá" {
		t.Errorf("SpeechContexts = %+v, want single phrase hint", cfg.SpeechContexts)
	}
	if cfg.SpeechContexts[0].Boost != 20 {
		t.Errorf("Boost = %v, want 20", cfg.SpeechContexts[0].Boost)
	}

	decoded, err := base64.StdEncoding.DecodeString(captured.Audio.Content)
	if err != nil {
		t.Fatalf("Audio content is not valid base64: %v", err)
	}
	if string(decoded) != string(wavData) {
		t.Error("Audio content does not round-trip to the original WAV bytes")
	}

	stats := client.GetStats()
	if stats.TotalRequests != 1 || stats.SuccessRequests != 1 {
		t.Errorf("Stats = %+v, want one successful request", stats)
	}
}

func TestGoogleRecognizeNoSpeech(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestGoogleClient(t, server.URL)

	_, err := client.Recognize(context.Background(), []byte("wav"), "vi-VN", "ba")
	if !errors.Is(err, ErrNoSpeech) {
		t.Errorf("Expected ErrNoSpeech, got %v", err)
	}
}

func TestGoogleRecognizeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestGoogleClient(t, server.URL)

	_, err := client.Recognize(context.Background(), []byte("wav"), "vi-VN", "ba")
	if err == nil {
		t.Fatal("Expected error for HTTP 500 response")
	}

	stats := client.GetStats()
	if stats.FailedRequests != 1 {
		t.Errorf("FailedRequests = %d, want 1", stats.FailedRequests)
	}
}

func TestGoogleRecognizeRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"alternatives":[{"transcript":"ba","confidence":0.8}]}]}`))
	}))
	defer server.Close()

	client, err := NewGoogleClient(GoogleConfig{
		Endpoint:   server.URL,
		APIKey:     "test-key",
		Timeout:    2 * time.Second,
		MaxRetries: 1,
	}, testMetrics)
	if err != nil {
		t.Fatalf("NewGoogleClient failed: %v", err)
	}

	result, err := client.Recognize(context.Background(), []byte("wav"), "vi-VN", "ba")
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if result.Text != "ba" {
		t.Errorf("Text = %q, want %q", result.Text, "ba")
	}
	if calls.Load() != 2 {
		t.Errorf("Request count = %d, want 2", calls.Load())
	}

	stats := client.GetStats()
	if stats.TotalRetries != 1 {
		t.Errorf("TotalRetries = %d, want 1", stats.TotalRetries)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "no speech", err: ErrNoSpeech, retryable: false},
		{name: "server error", err: errors.New("HTTP error 500: oops"), retryable: true},
		{name: "rate limit", err: errors.New("HTTP error 429: slow down"), retryable: true},
		{name: "client error", err: errors.New("HTTP error 400: bad request"), retryable: false},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), retryable: true},
		{name: "deadline", err: context.DeadlineExceeded, retryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.retryable {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}

func TestGoogleRecognizeRecordsMetrics(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"alternatives":[{"transcript":"ba","confidence":0.8}]}]}`))
	}))
	defer server.Close()

	client, err := NewGoogleClient(GoogleConfig{
		Endpoint:   server.URL,
		APIKey:     "test-key",
		Timeout:    2 * time.Second,
		MaxRetries: 1,
	}, testMetrics)
	if err != nil {
		t.Fatalf("NewGoogleClient failed: %v", err)
	}

	requestsBefore := testutil.ToFloat64(testMetrics.RecognitionRequests)
	successesBefore := testutil.ToFloat64(testMetrics.RecognitionSuccesses)
	retriesBefore := testutil.ToFloat64(testMetrics.RecognitionRetries)

	if _, err := client.Recognize(context.Background(), []byte("wav"), "vi-VN", "ba"); err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	if got := testutil.ToFloat64(testMetrics.RecognitionRequests) - requestsBefore; got != 1 {
		t.Errorf("RecognitionRequests delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(testMetrics.RecognitionSuccesses) - successesBefore; got != 1 {
		t.Errorf("RecognitionSuccesses delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(testMetrics.RecognitionRetries) - retriesBefore; got != 1 {
		t.Errorf("RecognitionRetries delta = %v, want 1", got)
	}
}

func TestGoogleNoSpeechRecordsMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestGoogleClient(t, server.URL)

	failuresBefore := testutil.ToFloat64(testMetrics.RecognitionFailures)
	noSpeechBefore := testutil.ToFloat64(testMetrics.RecognitionNoSpeech)

	if _, err := client.Recognize(context.Background(), []byte("wav"), "vi-VN", "ba"); !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("Recognize error = %v, want ErrNoSpeech", err)
	}

	if got := testutil.ToFloat64(testMetrics.RecognitionFailures) - failuresBefore; got != 1 {
		t.Errorf("RecognitionFailures delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(testMetrics.RecognitionNoSpeech) - noSpeechBefore; got != 1 {
		t.Errorf("RecognitionNoSpeech delta = %v, want 1", got)
	}
}
