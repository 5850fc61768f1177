package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
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
			SampleRate:      48000,
			FramesPerBuffer: 1024,
		},
		Recognition: RecognitionConfig{
			Provider:      "google",
			APIKey:        "test-key",
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

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{
			name:        "valid configuration",
			mutate:      func(*Config) {},
			expectError: false,
		},
		{
			name:        "invalid server port",
			mutate:      func(c *Config) { c.Server.Port = 70000 },
			expectError: true,
		},
		{
			name:        "empty bind address",
			mutate:      func(c *Config) { c.Server.Address = "" },
			expectError: true,
		},
		{
			name:        "recording cap too short",
			mutate:      func(c *Config) { c.Audio.MaxRecordingMs = 100 },
			expectError: true,
		},
		{
			name:        "progress tick exceeds recording cap",
			mutate:      func(c *Config) { c.Audio.ProgressTickMs = 5000 },
			expectError: true,
		},
		{
			name:        "unsupported capture rate",
			mutate:      func(c *Config) { c.Capture.SampleRate = 11025 },
			expectError: true,
		},
		{
			name:        "unknown recognition provider",
			mutate:      func(c *Config) { c.Recognition.Provider = "sphinx" },
			expectError: true,
		},
		{
			name:        "empty language",
			mutate:      func(c *Config) { c.Recognition.Language = "" },
			expectError: true,
		},
		{
			name:        "negative retries",
			mutate:      func(c *Config) { c.Recognition.MaxRetries = -1 },
			expectError: true,
		},
		{
			name:        "store enabled without path",
			mutate:      func(c *Config) { c.Store.Path = "" },
			expectError: true,
		},
		{
			name:        "store disabled without path",
			mutate:      func(c *Config) { c.Store.Path = ""; c.Store.Enabled = false },
			expectError: false,
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.Logging.Level = "verbose" },
			expectError: true,
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.Logging.Format = "xml" },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(&config)

			err := config.Validate()
			if tt.expectError && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestConfigLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `
server:
  port: 5000
  address: "127.0.0.1"
  cors_origins: ["http://localhost:3000"]

audio:
  max_recording_ms: 3000
  progress_tick_ms: 50
  max_payload_kb: 1024

capture:
  sample_rate: 48000
  frames_per_buffer: 1024
  echo_cancellation: true
  noise_suppression: true

recognition:
  provider: "google"
  api_key: "test-key"
  language: "vi-VN"
  phrase_boost: 20
  timeout: 30
  max_retries: 3
  max_concurrent: 10

store:
  path: "./data/attempts"
  enabled: true

logging:
  level: "debug"
  format: "text"
  output: "stderr"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	config, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", config.Server.Port)
	}
	if config.Server.Address != "127.0.0.1" {
		t.Errorf("Server.Address = %q, want 127.0.0.1", config.Server.Address)
	}
	if len(config.Server.CORSOrigins) != 1 || config.Server.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("Server.CORSOrigins = %v", config.Server.CORSOrigins)
	}
	if config.Audio.MaxRecordingMs != 3000 {
		t.Errorf("Audio.MaxRecordingMs = %d, want 3000", config.Audio.MaxRecordingMs)
	}
	if config.Capture.SampleRate != 48000 {
		t.Errorf("Capture.SampleRate = %d, want 48000", config.Capture.SampleRate)
	}
	if !config.Capture.EchoCancellation {
		t.Error("Capture.EchoCancellation = false, want true")
	}
	if config.Recognition.Provider != "google" {
		t.Errorf("Recognition.Provider = %q, want google", config.Recognition.Provider)
	}
	if config.Recognition.PhraseBoost != 20 {
		t.Errorf("Recognition.PhraseBoost = %v, want 20", config.Recognition.PhraseBoost)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", config.Logging.Level)
	}
}

func TestConfigLoadNonexistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent config file")
	}
}

func TestConfigLoadInvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("server: [not a map"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestDefault(t *testing.T) {
	config := Default()
	config.Recognition.APIKey = "test-key"

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should validate, got: %v", err)
	}

	if config.Audio.MaxRecordingMs != 3000 {
		t.Errorf("MaxRecordingMs = %d, want 3000", config.Audio.MaxRecordingMs)
	}
	if config.Recognition.Language != "vi-VN" {
		t.Errorf("Language = %q, want vi-VN", config.Recognition.Language)
	}
}

func TestDurationHelpers(t *testing.T) {
	audio := AudioConfig{
		MaxRecordingMs: 3000,
		ProgressTickMs: 50,
	}

	if audio.GetMaxRecordingDuration() != 3*time.Second {
		t.Errorf("Expected 3 seconds, got %v", audio.GetMaxRecordingDuration())
	}
	if audio.GetProgressTickDuration() != 50*time.Millisecond {
		t.Errorf("Expected 50ms, got %v", audio.GetProgressTickDuration())
	}

	recognition := RecognitionConfig{Timeout: 30}
	if recognition.GetTimeoutDuration() != 30*time.Second {
		t.Errorf("Expected 30 seconds, got %v", recognition.GetTimeoutDuration())
	}
}

func TestListenAddr(t *testing.T) {
	server := ServerConfig{Address: "127.0.0.1", Port: 5000}
	if got := server.ListenAddr(); got != "127.0.0.1:5000" {
		t.Errorf("ListenAddr = %q, want 127.0.0.1:5000", got)
	}
}
