package recognition

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/metrics"
)

const defaultGoogleEndpoint = "https://speech.googleapis.com/v1/speech:recognize"

// GoogleConfig contains Google Cloud Speech REST client configuration.
type GoogleConfig struct {
	Endpoint      string
	APIKey        string
	Timeout       time.Duration
	MaxRetries    int
	MaxConcurrent int
	PhraseBoost   float64
}

// GoogleClient calls the Google Cloud Speech REST API with an API key. The
// expected word is passed as a boosted phrase hint, which is what makes
// single-word Vietnamese recognition workable.
type GoogleClient struct {
	config     GoogleConfig
	httpClient *http.Client
	semaphore  chan struct{}
	metrics    *metrics.Metrics

	// Statistics
	totalRequests   uint64
	successRequests uint64
	failedRequests  uint64
	totalRetries    uint64
	avgResponseTime time.Duration

	mu sync.RWMutex
}

// ClientStats represents gateway client statistics.
type ClientStats struct {
	TotalRequests   uint64        `json:"total_requests"`
	SuccessRequests uint64        `json:"success_requests"`
	FailedRequests  uint64        `json:"failed_requests"`
	SuccessRate     float64       `json:"success_rate"`
	TotalRetries    uint64        `json:"total_retries"`
	AvgResponseTime time.Duration `json:"avg_response_time"`
	ActiveRequests  int           `json:"active_requests"`
}

// Request/response shapes of the speech:recognize REST method.
type googleRequest struct {
	Config googleRecognitionConfig `json:"config"`
	Audio  googleAudio             `json:"audio"`
}

type googleRecognitionConfig struct {
	Encoding                   string          `json:"encoding"`
	SampleRateHertz            int             `json:"sampleRateHertz"`
	LanguageCode               string          `json:"languageCode"`
	SpeechContexts             []speechContext `json:"speechContexts,omitempty"`
	UseEnhanced                bool            `json:"useEnhanced"`
	EnableAutomaticPunctuation bool            `json:"enableAutomaticPunctuation"`
	MaxAlternatives            int             `json:"maxAlternatives"`
	ProfanityFilter            bool            `json:"profanityFilter"`
}

type speechContext struct {
	Phrases []string `json:"phrases"`
	Boost   float64  `json:"boost"`
}

type googleAudio struct {
	Content string `json:"content"`
}

type googleResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

// NewGoogleClient creates a Google Speech REST client. A nil metrics
// argument disables Prometheus recording.
func NewGoogleClient(config GoogleConfig, m *metrics.Metrics) (*GoogleClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key cannot be empty")
	}

	if config.Endpoint == "" {
		config.Endpoint = defaultGoogleEndpoint
	}

	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	if config.MaxRetries < 0 {
		config.MaxRetries = 3
	}

	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}

	if config.PhraseBoost <= 0 {
		config.PhraseBoost = 20
	}

	httpClient := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &GoogleClient{
		config:     config,
		httpClient: httpClient,
		semaphore:  make(chan struct{}, config.MaxConcurrent),
		metrics:    m,
	}, nil
}

// Name identifies the provider.
func (c *GoogleClient) Name() string {
	return "google"
}

// Recognize sends the WAV payload for transcription. Retryable failures are
// retried with exponential backoff up to MaxRetries; ErrNoSpeech is terminal.
func (c *GoogleClient) Recognize(ctx context.Context, wavData []byte, language, hint string) (*Result, error) {
	// Acquire semaphore for rate limiting
	select {
	case c.semaphore <- struct{}{}:
		defer func() { <-c.semaphore }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	startTime := time.Now()
	c.incrementTotalRequests()
	c.metrics.RecordRecognitionRequest()

	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			c.incrementTotalRetries()
			c.metrics.RecordRecognitionRetry()

			backoffTime := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			if backoffTime > 30*time.Second {
				backoffTime = 30 * time.Second
			}

			select {
			case <-time.After(backoffTime):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := c.doRequest(ctx, wavData, language, hint)
		if err == nil {
			c.incrementSuccessRequests()
			c.updateAvgResponseTime(time.Since(startTime))
			c.metrics.RecordRecognitionSuccess(time.Since(startTime).Seconds())
			return result, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			break
		}
	}

	c.incrementFailedRequests()
	c.metrics.RecordRecognitionFailure(time.Since(startTime).Seconds())
	if lastErr == ErrNoSpeech {
		c.metrics.RecordRecognitionNoSpeech()
		return nil, ErrNoSpeech
	}
	return nil, fmt.Errorf("recognition failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

// doRequest performs a single speech:recognize call.
func (c *GoogleClient) doRequest(ctx context.Context, wavData []byte, language, hint string) (*Result, error) {
	request := googleRequest{
		Config: googleRecognitionConfig{
			Encoding:                   "LINEAR16",
			SampleRateHertz:            16000,
			LanguageCode:               language,
			UseEnhanced:                true,
			EnableAutomaticPunctuation: false,
			MaxAlternatives:            1,
			ProfanityFilter:            false,
		},
		Audio: googleAudio{
			Content: base64.StdEncoding.EncodeToString(wavData),
		},
	}

	if hint != "" {
		request.Config.SpeechContexts = []speechContext{{
			Phrases: []string{hint},
			Boost:   c.config.PhraseBoost,
		}}
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", c.config.Endpoint, c.config.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(respBody))
	}

	var googleResp googleResponse
	if err := json.Unmarshal(respBody, &googleResp); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}

	if len(googleResp.Results) == 0 || len(googleResp.Results[0].Alternatives) == 0 {
		return nil, ErrNoSpeech
	}

	alternative := googleResp.Results[0].Alternatives[0]
	return &Result{
		Text:       alternative.Transcript,
		Confidence: alternative.Confidence,
	}, nil
}

// isRetryableError classifies failures worth retrying: server errors, rate
// limiting and transport problems. ErrNoSpeech and client errors are not.
func isRetryableError(err error) bool {
	if err == ErrNoSpeech {
		return false
	}

	if err == context.DeadlineExceeded {
		return true
	}

	errStr := err.Error()

	if strings.Contains(errStr, "HTTP error 5") {
		return true
	}

	if strings.Contains(errStr, "HTTP error 429") {
		return true
	}

	if strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "refused") {
		return true
	}

	return false
}

// Statistics methods
func (c *GoogleClient) incrementTotalRequests() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRequests++
}

func (c *GoogleClient) incrementSuccessRequests() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.successRequests++
}

func (c *GoogleClient) incrementFailedRequests() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failedRequests++
}

func (c *GoogleClient) incrementTotalRetries() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRetries++
}

func (c *GoogleClient) updateAvgResponseTime(responseTime time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Simple moving average
	if c.avgResponseTime == 0 {
		c.avgResponseTime = responseTime
	} else {
		c.avgResponseTime = (c.avgResponseTime + responseTime) / 2
	}
}

// GetStats returns current client statistics.
func (c *GoogleClient) GetStats() ClientStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	successRate := float64(0)
	if c.totalRequests > 0 {
		successRate = float64(c.successRequests) / float64(c.totalRequests) * 100
	}

	return ClientStats{
		TotalRequests:   c.totalRequests,
		SuccessRequests: c.successRequests,
		FailedRequests:  c.failedRequests,
		SuccessRate:     successRate,
		TotalRetries:    c.totalRetries,
		AvgResponseTime: c.avgResponseTime,
		ActiveRequests:  len(c.semaphore),
	}
}
