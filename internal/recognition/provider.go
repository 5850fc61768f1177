package recognition

import (
	"context"
	"errors"
)

// ErrNoSpeech indicates the gateway found no recognizable speech in the
// audio. Recoverable: the learner is asked to try again.
var ErrNoSpeech = errors.New("no speech recognized")

// Result is one transcription verdict from a provider.
type Result struct {
	Text       string
	Confidence float64
}

// Provider is an opaque speech-to-text service. wavData is a 16 kHz mono
// 16-bit PCM WAV payload; hint is the word the learner is expected to say
// and may be used to bias recognition.
type Provider interface {
	Name() string
	Recognize(ctx context.Context, wavData []byte, language, hint string) (*Result, error)
}
