package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/metrics"
)

const defaultWhisperEndpoint = "https://api.openai.com/v1/audio/transcriptions"

// WhisperConfig contains configuration for the OpenAI transcription provider.
type WhisperConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// WhisperClient is the alternate recognition provider, backed by OpenAI's
// audio transcription endpoint. It takes no phrase hints; the hint parameter
// is accepted and ignored.
type WhisperClient struct {
	config     WhisperConfig
	httpClient *http.Client
	metrics    *metrics.Metrics
}

type whisperResponse struct {
	Text string `json:"text"`
}

// NewWhisperClient creates an OpenAI transcription provider. A nil metrics
// argument disables Prometheus recording.
func NewWhisperClient(config WhisperConfig, m *metrics.Metrics) (*WhisperClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key cannot be empty")
	}

	if config.Endpoint == "" {
		config.Endpoint = defaultWhisperEndpoint
	}

	if config.Model == "" {
		config.Model = "whisper-1"
	}

	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}

	return &WhisperClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		metrics:    m,
	}, nil
}

// Name identifies the provider.
func (w *WhisperClient) Name() string {
	return "whisper"
}

// Recognize sends the WAV payload as a multipart upload.
func (w *WhisperClient) Recognize(ctx context.Context, wavData []byte, language, _ string) (*Result, error) {
	w.metrics.RecordRecognitionRequest()
	startTime := time.Now()

	result, err := w.transcribe(ctx, wavData, language)
	if err != nil {
		w.metrics.RecordRecognitionFailure(time.Since(startTime).Seconds())
		if err == ErrNoSpeech {
			w.metrics.RecordRecognitionNoSpeech()
		}
		return nil, err
	}

	w.metrics.RecordRecognitionSuccess(time.Since(startTime).Seconds())
	return result, nil
}

// transcribe performs a single transcription upload.
func (w *WhisperClient) transcribe(ctx context.Context, wavData []byte, language string) (*Result, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(wavData); err != nil {
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}

	if err := writer.WriteField("model", w.config.Model); err != nil {
		return nil, fmt.Errorf("failed to write model field: %w", err)
	}

	// Whisper takes bare ISO-639-1 codes, not BCP-47 tags.
	if lang := baseLanguage(language); lang != "" {
		if err := writer.WriteField("language", lang); err != nil {
			return nil, fmt.Errorf("failed to write language field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", w.config.Endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+w.config.APIKey)

	resp, err := w.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(respBody))
	}

	var whisperResp whisperResponse
	if err := json.Unmarshal(respBody, &whisperResp); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}

	if strings.TrimSpace(whisperResp.Text) == "" {
		return nil, ErrNoSpeech
	}

	// The endpoint reports no confidence score; assume high.
	return &Result{
		Text:       whisperResp.Text,
		Confidence: 1.0,
	}, nil
}

// baseLanguage reduces a BCP-47 tag like "vi-VN" to its primary subtag.
func baseLanguage(tag string) string {
	if idx := strings.IndexByte(tag, '-'); idx > 0 {
		return tag[:idx]
	}
	return tag
}
