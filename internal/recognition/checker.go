package recognition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/audio"
)

// CheckResult is the verdict reported back to the learner. Error carries the
// machine-readable failure, Message the user-facing text; no failure path is
// left without a message.
type CheckResult struct {
	Success    bool    `json:"success"`
	Correct    bool    `json:"correct"`
	Recognized string  `json:"recognized,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Message    string  `json:"message,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// Checker runs the pronunciation check: validate the payload, recognize with
// the expected word as a hint, normalize and compare.
type Checker struct {
	provider Provider
	language string
	logger   *slog.Logger
}

// NewChecker creates a checker for the given provider and language tag.
func NewChecker(provider Provider, language string, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		provider: provider,
		language: language,
		logger:   logger,
	}
}

// Check verifies a learner's attempt against the expected word. It never
// panics across the gateway boundary; every failure mode maps to a result
// with Success=false and a retryable message.
func (c *Checker) Check(ctx context.Context, wavData []byte, expectedWord string) *CheckResult {
	if err := audio.ValidateWAV(wavData); err != nil {
		return &CheckResult{
			Success: false,
			Error:   err.Error(),
			Message: "Invalid audio data",
		}
	}

	if info, err := audio.GetWAVInfo(wavData); err == nil {
		c.logger.Info("Checking pronunciation",
			slog.String("expected_word", expectedWord),
			slog.Int("sample_rate", int(info.SampleRate)),
			slog.Float64("duration_seconds", info.Duration),
			slog.Int("payload_bytes", len(wavData)),
		)
	}

	result, err := c.provider.Recognize(ctx, wavData, c.language, expectedWord)
	if err != nil {
		if errors.Is(err, ErrNoSpeech) {
			return &CheckResult{
				Success: false,
				Error:   "Could not understand audio",
				Message: "Please try again - speak clearly",
			}
		}
		c.logger.Error("Recognition gateway failed",
			slog.String("provider", c.provider.Name()),
			slog.String("error", err.Error()),
		)
		return &CheckResult{
			Success: false,
			Error:   fmt.Sprintf("Speech recognition service error: %v", err),
			Message: "Service temporarily unavailable",
		}
	}

	expected := Normalize(expectedWord)
	recognized := CollapseRepeats(Normalize(result.Text))

	correct := recognized == expected

	message := "Try again"
	if correct {
		message = "Correct!"
	}

	c.logger.Info("Pronunciation checked",
		slog.String("expected", expected),
		slog.String("recognized", recognized),
		slog.Bool("correct", correct),
		slog.Float64("confidence", result.Confidence),
	)

	return &CheckResult{
		Success:    true,
		Correct:    correct,
		Recognized: recognized,
		Confidence: result.Confidence,
		Message:    message,
	}
}

// GatewayStats reports the provider's client statistics when it keeps any.
func (c *Checker) GatewayStats() ClientStats {
	if p, ok := c.provider.(interface{ GetStats() ClientStats }); ok {
		return p.GetStats()
	}
	return ClientStats{}
}

// Normalize lowercases, trims and applies Unicode NFC so that differently
// composed Vietnamese diacritics compare equal.
func Normalize(s string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(s)))
}

// CollapseRepeats reduces a transcript whose words are all identical to the
// single word ("ba ba ba" becomes "ba"); recognizers often echo a short
// utterance several times. Mixed transcripts pass through unchanged.
func CollapseRepeats(s string) string {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return s
	}
	for _, f := range fields[1:] {
		if f != fields[0] {
			return s
		}
	}
	return fields[0]
}
