package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

// Capture defaults. Browsers typically hand out 48 kHz capture streams, so
// the hardware hint matches that and the converter downsamples to 16 kHz.
const (
	DefaultCaptureRate     = 48000
	DefaultFramesPerBuffer = 1024
)

// CaptureConstraints carries the acquisition hints for a microphone stream.
// Echo cancellation and noise suppression are requests, not guarantees; the
// host audio API applies them where it can.
type CaptureConstraints struct {
	SampleRate       int
	Channels         int
	FramesPerBuffer  int
	EchoCancellation bool
	NoiseSuppression bool
}

func (c CaptureConstraints) withDefaults() CaptureConstraints {
	if c.SampleRate <= 0 {
		c.SampleRate = DefaultCaptureRate
	}
	if c.Channels <= 0 {
		c.Channels = TargetChannels
	}
	if c.FramesPerBuffer <= 0 {
		c.FramesPerBuffer = DefaultFramesPerBuffer
	}
	return c
}

// Supported reports whether the platform exposes any audio input device.
func Supported() bool {
	if err := portaudio.Initialize(); err != nil {
		return false
	}
	defer portaudio.Terminate()

	_, err := portaudio.DefaultInputDevice()
	return err == nil
}

// CaptureSession is one open microphone stream. It is long-lived: the same
// session is reused across repeated recordings and must be released exactly
// when the practice session ends.
type CaptureSession struct {
	mu          sync.Mutex
	stream      *portaudio.Stream
	buffer      []float32
	constraints CaptureConstraints
	released    bool
}

// RequestAccess opens the default input device under the given constraints
// and starts the hardware stream. Open or start failures surface as
// ErrPermissionDenied since the host typically refuses the device rather
// than reporting a distinct permission state.
func RequestAccess(constraints CaptureConstraints) (*CaptureSession, error) {
	constraints = constraints.withDefaults()

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedPlatform, err)
	}

	buffer := make([]float32, constraints.FramesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(
		constraints.Channels,
		0,
		float64(constraints.SampleRate),
		constraints.FramesPerBuffer,
		buffer,
	)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	return &CaptureSession{
		stream:      stream,
		buffer:      buffer,
		constraints: constraints,
	}, nil
}

// SampleRate returns the native capture rate of the session.
func (s *CaptureSession) SampleRate() int {
	return s.constraints.SampleRate
}

// ReadFrames returns the next batch of captured samples. It returns
// (nil, nil) when no data is available yet so callers can poll without
// blocking the stop path, and ErrNoCaptureSession once released.
func (s *CaptureSession) ReadFrames() ([]float32, error) {
	s.mu.Lock()
	if s.released || s.stream == nil {
		s.mu.Unlock()
		return nil, ErrNoCaptureSession
	}
	stream := s.stream
	s.mu.Unlock()

	available, err := stream.AvailableToRead()
	if err != nil || available == 0 {
		time.Sleep(5 * time.Millisecond)
		return nil, nil
	}

	if err := stream.Read(); err != nil {
		// Transient overflow or stop race; the next poll decides.
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil, ErrNoCaptureSession
	}

	out := make([]float32, len(s.buffer))
	copy(out, s.buffer)
	return out, nil
}

// Release stops the hardware tracks and frees the device. Safe to call more
// than once.
func (s *CaptureSession) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return
	}
	s.released = true

	if s.stream != nil {
		s.stream.Stop()
		s.stream.Close()
		s.stream = nil
	}

	portaudio.Terminate()
}
