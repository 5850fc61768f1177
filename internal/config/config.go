package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete trainer configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Audio       AudioConfig       `yaml:"audio"`
	Capture     CaptureConfig     `yaml:"capture"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Store       StoreConfig       `yaml:"store"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServerConfig contains HTTP API server configuration
type ServerConfig struct {
	Port        int      `yaml:"port"`
	Address     string   `yaml:"address"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// AudioConfig contains recording and conversion parameters
type AudioConfig struct {
	MaxRecordingMs int `yaml:"max_recording_ms"`
	ProgressTickMs int `yaml:"progress_tick_ms"`
	MaxPayloadKB   int `yaml:"max_payload_kb"`
}

// CaptureConfig contains microphone capture configuration
type CaptureConfig struct {
	SampleRate       int  `yaml:"sample_rate"`
	FramesPerBuffer  int  `yaml:"frames_per_buffer"`
	EchoCancellation bool `yaml:"echo_cancellation"`
	NoiseSuppression bool `yaml:"noise_suppression"`
}

// RecognitionConfig contains speech recognition gateway configuration
type RecognitionConfig struct {
	Provider      string  `yaml:"provider"`
	Endpoint      string  `yaml:"endpoint"`
	APIKey        string  `yaml:"api_key"`
	Language      string  `yaml:"language"`
	PhraseBoost   float64 `yaml:"phrase_boost"`
	Model         string  `yaml:"model"`
	Timeout       int     `yaml:"timeout"` // seconds
	MaxRetries    int     `yaml:"max_retries"`
	MaxConcurrent int     `yaml:"max_concurrent"`
}

// StoreConfig contains attempt history store configuration
type StoreConfig struct {
	Path    string `yaml:"path"`
	Enabled bool   `yaml:"enabled"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Default returns a configuration with sensible defaults. The API key still
// has to come from the file or the GOOGLE_SPEECH_API_KEY environment
// variable.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        5000,
			Address:     "0.0.0.0",
			CORSOrigins: []string{"*"},
		},
		Audio: AudioConfig{
			MaxRecordingMs: 3000,
			ProgressTickMs: 50,
			MaxPayloadKB:   1024,
		},
		Capture: CaptureConfig{
			SampleRate:       48000,
			FramesPerBuffer:  1024,
			EchoCancellation: true,
			NoiseSuppression: true,
		},
		Recognition: RecognitionConfig{
			Provider:      "google",
			Language:      "vi-VN",
			PhraseBoost:   20,
			Timeout:       30,
			MaxRetries:    3,
			MaxConcurrent: 10,
		},
		Store: StoreConfig{
			Path:    "./data/attempts",
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Capture.Validate(); err != nil {
		return fmt.Errorf("capture config: %w", err)
	}

	if err := c.Recognition.Validate(); err != nil {
		return fmt.Errorf("recognition config: %w", err)
	}

	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}

	if s.Address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	return nil
}

// Validate validates audio configuration
func (a *AudioConfig) Validate() error {
	if a.MaxRecordingMs < 500 || a.MaxRecordingMs > 30000 {
		return fmt.Errorf("max_recording_ms must be between 500 and 30000, got %d", a.MaxRecordingMs)
	}

	if a.ProgressTickMs < 10 || a.ProgressTickMs > a.MaxRecordingMs {
		return fmt.Errorf("progress_tick_ms must be between 10 and max_recording_ms, got %d", a.ProgressTickMs)
	}

	if a.MaxPayloadKB < 1 {
		return fmt.Errorf("max_payload_kb must be at least 1, got %d", a.MaxPayloadKB)
	}

	return nil
}

// Validate validates capture configuration
func (c *CaptureConfig) Validate() error {
	validRates := map[int]bool{8000: true, 16000: true, 22050: true, 44100: true, 48000: true}
	if !validRates[c.SampleRate] {
		return fmt.Errorf("sample_rate must be one of [8000, 16000, 22050, 44100, 48000], got %d", c.SampleRate)
	}

	if c.FramesPerBuffer < 64 || c.FramesPerBuffer > 8192 {
		return fmt.Errorf("frames_per_buffer must be between 64 and 8192, got %d", c.FramesPerBuffer)
	}

	return nil
}

// Validate validates recognition configuration
func (r *RecognitionConfig) Validate() error {
	validProviders := map[string]bool{"google": true, "whisper": true}
	if !validProviders[r.Provider] {
		return fmt.Errorf("provider must be 'google' or 'whisper', got '%s'", r.Provider)
	}

	if r.APIKey == "" && os.Getenv("GOOGLE_SPEECH_API_KEY") == "" && os.Getenv("OPENAI_API_KEY") == "" {
		return fmt.Errorf("api_key cannot be empty")
	}

	if r.Language == "" {
		return fmt.Errorf("language cannot be empty")
	}

	if r.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", r.Timeout)
	}

	if r.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative, got %d", r.MaxRetries)
	}

	if r.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be at least 1, got %d", r.MaxConcurrent)
	}

	return nil
}

// Validate validates store configuration
func (s *StoreConfig) Validate() error {
	if s.Enabled && s.Path == "" {
		return fmt.Errorf("path cannot be empty when the store is enabled")
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// ResolveAPIKey returns the configured API key, falling back to the
// provider's conventional environment variable.
func (r *RecognitionConfig) ResolveAPIKey() string {
	if r.APIKey != "" {
		return r.APIKey
	}
	if r.Provider == "whisper" {
		return os.Getenv("OPENAI_API_KEY")
	}
	return os.Getenv("GOOGLE_SPEECH_API_KEY")
}

// GetMaxRecordingDuration returns the recording cap as a time.Duration
func (a *AudioConfig) GetMaxRecordingDuration() time.Duration {
	return time.Duration(a.MaxRecordingMs) * time.Millisecond
}

// GetProgressTickDuration returns the progress tick as a time.Duration
func (a *AudioConfig) GetProgressTickDuration() time.Duration {
	return time.Duration(a.ProgressTickMs) * time.Millisecond
}

// GetTimeoutDuration returns the recognition timeout as a time.Duration
func (r *RecognitionConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(r.Timeout) * time.Second
}

// ListenAddr returns the server's host:port listen address
func (s *ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}
