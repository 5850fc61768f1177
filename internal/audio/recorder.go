package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Recording limits. The maximum duration doubles as the timeout mechanism:
// there is no separate deadline on a recording.
const (
	DefaultMaxDuration  = 3000 * time.Millisecond
	DefaultProgressTick = 50 * time.Millisecond
)

// RecorderState describes the recorder's lifecycle position.
type RecorderState int

const (
	StateIdle RecorderState = iota
	StateRecording
	StateStopping
)

// String returns the state name for logging.
func (s RecorderState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// FrameSource is the capture stream the recorder reads from. CaptureSession
// implements it; tests substitute a scripted source.
type FrameSource interface {
	ReadFrames() ([]float32, error)
	SampleRate() int
}

// EncoderFactory creates a fresh chunk encoder for each recording attempt.
type EncoderFactory func(sampleRate int) (ChunkEncoder, error)

// ProgressFunc receives the elapsed percentage, in [0,100], on every
// progress tick.
type ProgressFunc func(percent int)

// CompletionFunc receives the finalized blob exactly once per recording.
// autoStopped distinguishes duration-triggered stops from manual ones.
// A cancelled recording never reaches this callback.
type CompletionFunc func(blob Blob, autoStopped bool)

// RecorderConfig bounds a recording attempt.
type RecorderConfig struct {
	MaxDuration  time.Duration
	ProgressTick time.Duration
}

func (c RecorderConfig) withDefaults() RecorderConfig {
	if c.MaxDuration <= 0 {
		c.MaxDuration = DefaultMaxDuration
	}
	if c.ProgressTick <= 0 {
		c.ProgressTick = DefaultProgressTick
	}
	return c
}

// Recorder wraps a long-lived capture session and runs one bounded recording
// at a time. The capture session is shared across attempts; each attempt is
// an independent recording value, so no state leaks between attempts.
type Recorder struct {
	cfg        RecorderConfig
	source     FrameSource
	newEncoder EncoderFactory
	logger     *slog.Logger

	mu    sync.Mutex
	state RecorderState
	rec   *recording
}

// recording is one bounded capture attempt.
type recording struct {
	encoder   ChunkEncoder
	progress  ProgressFunc
	complete  CompletionFunc
	startedAt time.Time
	auto      bool

	mu       sync.Mutex
	chunks   [][]byte
	dataSize int

	stopRead  chan struct{}
	readDone  chan struct{}
	stopTimer chan struct{}
	readOnce  sync.Once
	timerOnce sync.Once
}

func (rec *recording) signalStopRead()  { rec.readOnce.Do(func() { close(rec.stopRead) }) }
func (rec *recording) signalStopTimer() { rec.timerOnce.Do(func() { close(rec.stopTimer) }) }

// NewRecorder creates a recorder bound to a capture session. newEncoder is
// invoked per recording attempt with the session's sample rate.
func NewRecorder(source FrameSource, newEncoder EncoderFactory, cfg RecorderConfig, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		cfg:        cfg.withDefaults(),
		source:     source,
		newEncoder: newEncoder,
		logger:     logger,
	}
}

// State returns the current lifecycle state.
func (r *Recorder) State() RecorderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start begins a new recording. It rejects the call with ErrRecorderBusy
// while a recording is in progress, so overlapping recordings cannot exist,
// and with ErrNoCaptureSession when the recorder has no capture stream.
func (r *Recorder) Start(progress ProgressFunc, complete CompletionFunc) error {
	if r.source == nil {
		return ErrNoCaptureSession
	}

	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return ErrRecorderBusy
	}

	encoder, err := r.newEncoder(r.source.SampleRate())
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("failed to create chunk encoder: %w", err)
	}

	rec := &recording{
		encoder:   encoder,
		progress:  progress,
		complete:  complete,
		startedAt: time.Now(),
		stopRead:  make(chan struct{}),
		readDone:  make(chan struct{}),
		stopTimer: make(chan struct{}),
	}

	r.state = StateRecording
	r.rec = rec
	r.mu.Unlock()

	go r.readLoop(rec)
	go r.timerLoop(rec)

	r.logger.Debug("Recording started",
		slog.Duration("max_duration", r.cfg.MaxDuration),
		slog.Int("sample_rate", r.source.SampleRate()),
	)

	return nil
}

// Stop ends the active recording and finalizes the blob asynchronously. The
// completion callback fires once the encoder has flushed and every pending
// chunk has been appended. Calling Stop while idle is a no-op.
func (r *Recorder) Stop(manual bool) {
	r.mu.Lock()
	if r.state != StateRecording || r.rec == nil {
		r.mu.Unlock()
		return
	}

	rec := r.rec
	rec.auto = !manual
	r.state = StateStopping
	r.mu.Unlock()

	rec.signalStopTimer()
	go r.finalize(rec)
}

// Cancel discards the active recording without producing a blob. The
// completion callback is never invoked for a cancelled recording. Cancel
// racing an in-flight auto-stop resolves to whichever transition claimed the
// state first, so at most one terminal outcome occurs.
func (r *Recorder) Cancel() {
	r.mu.Lock()
	if r.state != StateRecording || r.rec == nil {
		r.mu.Unlock()
		return
	}

	rec := r.rec
	r.state = StateIdle
	r.rec = nil
	r.mu.Unlock()

	rec.signalStopTimer()
	rec.signalStopRead()
	<-rec.readDone

	rec.mu.Lock()
	discarded := len(rec.chunks)
	rec.chunks = nil
	rec.dataSize = 0
	rec.mu.Unlock()

	r.logger.Debug("Recording cancelled", slog.Int("discarded_chunks", discarded))
}

// readLoop pulls capture frames and feeds the chunk encoder until stopped.
func (r *Recorder) readLoop(rec *recording) {
	defer close(rec.readDone)

	for {
		select {
		case <-rec.stopRead:
			return
		default:
		}

		frames, err := r.source.ReadFrames()
		if err != nil {
			// Capture session released underneath us.
			r.logger.Warn("Capture read failed, ending read loop",
				slog.String("error", err.Error()),
			)
			return
		}
		if len(frames) == 0 {
			continue
		}

		chunks, err := rec.encoder.Encode(frames)
		if err != nil {
			r.logger.Warn("Chunk encoding failed, dropping frame batch",
				slog.String("error", err.Error()),
			)
			continue
		}

		rec.appendChunks(chunks)
	}
}

// timerLoop drives progress reporting and the auto-stop. The tick is
// independent of chunk arrival.
func (r *Recorder) timerLoop(rec *recording) {
	ticker := time.NewTicker(r.cfg.ProgressTick)
	defer ticker.Stop()

	for {
		select {
		case <-rec.stopTimer:
			return
		case <-ticker.C:
			elapsed := time.Since(rec.startedAt)

			percent := int(elapsed * 100 / r.cfg.MaxDuration)
			if percent > 100 {
				percent = 100
			}

			// Report only while this recording still owns the recorder.
			r.mu.Lock()
			active := r.state == StateRecording && r.rec == rec
			r.mu.Unlock()
			if !active {
				return
			}

			if rec.progress != nil {
				rec.progress(percent)
			}

			if elapsed >= r.cfg.MaxDuration {
				r.Stop(false)
				return
			}
		}
	}
}

// finalize drains pending chunks, flushes the encoder, assembles the blob
// and fires the completion callback exactly once.
func (r *Recorder) finalize(rec *recording) {
	rec.signalStopRead()
	<-rec.readDone

	if tail, err := rec.encoder.Flush(); err != nil {
		r.logger.Warn("Encoder flush failed, finalizing accumulated chunks only",
			slog.String("error", err.Error()),
		)
	} else {
		rec.appendChunks(tail)
	}

	rec.mu.Lock()
	data := make([]byte, 0, rec.dataSize+4*len(rec.chunks))
	for _, chunk := range rec.chunks {
		data = appendChunk(data, chunk)
	}
	numChunks := len(rec.chunks)
	rec.chunks = nil
	rec.mu.Unlock()

	blob := Blob{
		MediaType:  rec.encoder.MediaType(),
		SampleRate: r.source.SampleRate(),
		Data:       data,
		Chunks:     numChunks,
	}

	r.mu.Lock()
	r.state = StateIdle
	r.rec = nil
	r.mu.Unlock()

	r.logger.Debug("Recording finalized",
		slog.Int("chunks", blob.Chunks),
		slog.Int("bytes", len(blob.Data)),
		slog.Bool("auto_stopped", rec.auto),
	)

	// A zero-chunk recording still completes, with an empty blob. The
	// converter reports it as ErrEmptyRecording downstream.
	if rec.complete != nil {
		rec.complete(blob, rec.auto)
	}
}

func (rec *recording) appendChunks(chunks [][]byte) {
	if len(chunks) == 0 {
		return
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, c := range chunks {
		rec.chunks = append(rec.chunks, c)
		rec.dataSize += len(c)
	}
}
