package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/audio"
	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/config"
	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/metrics"
	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/recognition"
	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/store"
	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/words"
)

// Checker judges one pronunciation attempt.
type Checker interface {
	Check(ctx context.Context, wavData []byte, expectedWord string) *recognition.CheckResult
}

// AttemptStore persists and reports pronunciation attempts. May be nil when
// the store is disabled.
type AttemptStore interface {
	SaveAttempt(attempt *store.Attempt) error
	ListAttempts(word string, limit int) ([]store.Attempt, error)
	Summary() (*store.Stats, error)
}

// HTTPServer provides the trainer's HTTP API
type HTTPServer struct {
	server  *http.Server
	logger  *slog.Logger
	config  *config.Config
	checker Checker
	store   AttemptStore
	metrics *metrics.Metrics

	startTime time.Time
}

// checkRequest is the body of POST /api/check-pronunciation. AudioData
// carries a base64 WAV payload, optionally as a data URL.
type checkRequest struct {
	AudioData    string `json:"audio_data"`
	ExpectedWord string `json:"expected_word"`
	Language     string `json:"language,omitempty"`
}

// NewHTTPServer creates the API server. store may be nil.
func NewHTTPServer(cfg *config.Config, logger *slog.Logger,
	checker Checker, attemptStore AttemptStore, m *metrics.Metrics) *HTTPServer {

	h := &HTTPServer{
		logger:    logger,
		config:    cfg,
		checker:   checker,
		store:     attemptStore,
		metrics:   m,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	h.setupRoutes(mux)

	h.server = &http.Server{
		Addr:         cfg.Server.ListenAddr(),
		Handler:      h.withCORS(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return h
}

// Handler exposes the full middleware-wrapped handler for tests.
func (h *HTTPServer) Handler() http.Handler {
	return h.server.Handler
}

// setupRoutes configures HTTP API routes
func (h *HTTPServer) setupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", h.withMetrics("/api/health", h.handleHealth))
	mux.HandleFunc("/api/words", h.withMetrics("/api/words", h.handleWords))
	mux.HandleFunc("/api/check-pronunciation", h.withMetrics("/api/check-pronunciation", h.handleCheck))
	mux.HandleFunc("/api/attempts", h.withMetrics("/api/attempts", h.handleAttempts))
	mux.HandleFunc("/api/stats", h.withMetrics("/api/stats", h.handleStats))

	// Prometheus metrics endpoint (no metrics needed for metrics endpoint)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/", h.withMetrics("/", h.handleRoot))
}

// withCORS applies the configured allowed origins and answers preflights.
func (h *HTTPServer) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed := h.allowOrigin(origin); allowed != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *HTTPServer) allowOrigin(origin string) string {
	for _, allowed := range h.config.Server.CORSOrigins {
		if allowed == "*" {
			return "*"
		}
		if allowed == origin {
			return origin
		}
	}
	return ""
}

// withMetrics wraps an HTTP handler with metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		ww := &responseWriter{ResponseWriter: w, statusCode: 200}

		handler(ww, r)

		duration := time.Since(startTime).Seconds()
		statusCode := fmt.Sprintf("%d", ww.statusCode)

		h.metrics.RecordHTTPRequest(r.Method, endpoint, statusCode, duration)

		if ww.statusCode >= 400 {
			errorType := "client_error"
			if ww.statusCode >= 500 {
				errorType = "server_error"
			}
			h.metrics.RecordHTTPError(r.Method, endpoint, errorType)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server
func (h *HTTPServer) Start() error {
	h.logger.Info("Starting HTTP API server",
		slog.String("address", h.server.Addr),
	)

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("Stopping HTTP API server...")

	return h.server.Shutdown(ctx)
}

// handleHealth implements the /api/health endpoint
func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
		"service": map[string]interface{}{
			"name":    "vietnamese-pronunciation-trainer",
			"version": "1.0.0",
		},
		"words": words.Count(),
	}

	writeJSON(w, http.StatusOK, health)
}

// handleWords implements the /api/words endpoint
func (h *HTTPServer) handleWords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"words": words.All(),
		"total": words.Count(),
	})
}

// handleCheck implements the POST /api/check-pronunciation endpoint. The
// response status mirrors the verdict's Success flag: 200 for any reached
// verdict, 400 for everything that kept a verdict from being reached.
func (h *HTTPServer) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	maxBytes := int64(h.config.Audio.MaxPayloadKB) * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.RecordCheckFailure("bad_request")
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "No data provided",
			"message": "Invalid request",
		})
		return
	}

	if req.AudioData == "" {
		h.metrics.RecordCheckFailure("missing_audio")
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Missing audio_data",
			"message": "No audio data provided",
		})
		return
	}

	if req.ExpectedWord == "" {
		h.metrics.RecordCheckFailure("missing_word")
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Missing expected_word",
			"message": "No expected word provided",
		})
		return
	}

	wavData, err := audio.DecodeBase64(req.AudioData)
	if err != nil {
		h.metrics.RecordCheckFailure("bad_base64")
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Invalid base64 audio data",
			"message": "Invalid audio data",
		})
		return
	}

	h.logger.Info("Checking pronunciation", slog.String("expected_word", req.ExpectedWord))

	result := h.checker.Check(r.Context(), wavData, req.ExpectedWord)

	if result.Success {
		durationSeconds := 0.0
		if info, err := audio.GetWAVInfo(wavData); err == nil {
			durationSeconds = info.Duration
		}
		h.metrics.RecordCheck(result.Correct, len(wavData), durationSeconds)
		h.saveAttempt(req.ExpectedWord, result)
	} else {
		h.metrics.RecordCheckFailure("check_failed")
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}

	writeJSON(w, status, result)
}

// saveAttempt records a reached verdict; storage failures are logged, never
// surfaced to the learner.
func (h *HTTPServer) saveAttempt(word string, result *recognition.CheckResult) {
	if h.store == nil {
		return
	}

	attempt := &store.Attempt{
		Word:       word,
		Recognized: result.Recognized,
		Correct:    result.Correct,
		Confidence: result.Confidence,
	}
	if err := h.store.SaveAttempt(attempt); err != nil {
		h.logger.Error("Failed to save attempt",
			slog.String("word", word),
			slog.String("error", err.Error()),
		)
	}
}

// handleAttempts implements the /api/attempts endpoint
func (h *HTTPServer) handleAttempts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.store == nil {
		http.Error(w, "Attempt store is disabled", http.StatusNotFound)
		return
	}

	word := r.URL.Query().Get("word")
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	attempts, err := h.store.ListAttempts(word, limit)
	if err != nil {
		h.logger.Error("Failed to list attempts", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if attempts == nil {
		attempts = []store.Attempt{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"attempts": attempts,
		"count":    len(attempts),
	})
}

// handleStats implements the /api/stats endpoint
func (h *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats := map[string]interface{}{
		"uptime":    time.Since(h.startTime).String(),
		"timestamp": time.Now().UTC(),
	}

	if h.store != nil {
		summary, err := h.store.Summary()
		if err != nil {
			h.logger.Error("Failed to summarize attempts", slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		stats["attempts"] = summary
	}

	if provider, ok := h.checker.(interface {
		GatewayStats() recognition.ClientStats
	}); ok {
		stats["recognition"] = provider.GatewayStats()
	}

	writeJSON(w, http.StatusOK, stats)
}

// handleRoot implements the / endpoint with API documentation
func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	apiDoc := map[string]interface{}{
		"service": "Vietnamese Pronunciation Trainer",
		"version": "1.0.0",
		"endpoints": map[string]interface{}{
			"GET /":                         "API documentation",
			"GET /api/health":               "Service health check",
			"GET /api/words":                "List practice words",
			"POST /api/check-pronunciation": "Check a recorded pronunciation",
			"GET /api/attempts":             "List recent attempts",
			"GET /api/stats":                "Get attempt statistics",
			"GET /metrics":                  "Prometheus metrics",
		},
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, apiDoc)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
