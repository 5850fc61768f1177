package audio

import (
	"encoding/binary"
	"fmt"

	opus "github.com/jj11hh/opus"
)

// MediaTypeOpus tags blobs produced by the Opus chunk encoder. Chunks are
// stored length-prefixed because Opus packets are self-delimiting only with
// external framing.
const MediaTypeOpus = "audio/opus"

const (
	// opusFrameMillis is the encoder frame duration. 20 ms is the canonical
	// Opus voice frame.
	opusFrameMillis = 20

	// maxOpusPacketSize bounds a single encoded Opus packet.
	maxOpusPacketSize = 1275
)

// Blob is one finalized compressed recording: the ordered chunk sequence
// concatenated with length prefixes, tagged with the encoder's media type and
// the capture sample rate.
type Blob struct {
	MediaType  string
	SampleRate int
	Data       []byte
	Chunks     int
}

// Empty reports whether the blob carries no audio at all.
func (b Blob) Empty() bool {
	return len(b.Data) == 0
}

// ChunkEncoder compresses raw capture frames into transport chunks. The
// recorder feeds it frame batches as they arrive and flushes it once on stop.
type ChunkEncoder interface {
	// Encode consumes a batch of float32 samples and returns zero or more
	// complete compressed chunks.
	Encode(frames []float32) ([][]byte, error)

	// Flush finalizes any buffered samples into a last chunk. Called exactly
	// once per recording, after the final Encode.
	Flush() ([][]byte, error)

	// MediaType identifies the produced chunk format.
	MediaType() string
}

// OpusEncoder is the production ChunkEncoder: it packs capture frames into
// fixed-duration Opus voice packets.
type OpusEncoder struct {
	enc        *opus.Encoder
	sampleRate int
	frameSize  int
	pending    []float32
	packet     []byte
}

// NewOpusEncoder creates a mono Opus chunk encoder for the given capture
// sample rate. Opus accepts 8, 12, 16, 24 and 48 kHz.
func NewOpusEncoder(sampleRate int) (*OpusEncoder, error) {
	enc, err := opus.NewEncoder(sampleRate, TargetChannels, opus.AppVoIP)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus encoder: %w", err)
	}

	return &OpusEncoder{
		enc:        enc,
		sampleRate: sampleRate,
		frameSize:  sampleRate * opusFrameMillis / 1000,
		pending:    make([]float32, 0, sampleRate/10),
		packet:     make([]byte, maxOpusPacketSize),
	}, nil
}

// Encode buffers the incoming samples and emits one chunk per complete
// 20 ms frame.
func (e *OpusEncoder) Encode(frames []float32) ([][]byte, error) {
	e.pending = append(e.pending, frames...)

	var chunks [][]byte
	for len(e.pending) >= e.frameSize {
		frame := e.pending[:e.frameSize]
		e.pending = e.pending[e.frameSize:]

		n, err := e.enc.EncodeFloat32(frame, e.packet)
		if err != nil {
			return nil, fmt.Errorf("opus encode failed: %w", err)
		}

		chunk := make([]byte, n)
		copy(chunk, e.packet[:n])
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

// Flush pads the final partial frame with silence and encodes it.
func (e *OpusEncoder) Flush() ([][]byte, error) {
	if len(e.pending) == 0 {
		return nil, nil
	}

	frame := make([]float32, e.frameSize)
	copy(frame, e.pending)
	e.pending = e.pending[:0]

	n, err := e.enc.EncodeFloat32(frame, e.packet)
	if err != nil {
		return nil, fmt.Errorf("opus flush failed: %w", err)
	}

	chunk := make([]byte, n)
	copy(chunk, e.packet[:n])
	return [][]byte{chunk}, nil
}

// MediaType returns the Opus media type tag.
func (e *OpusEncoder) MediaType() string {
	return MediaTypeOpus
}

// appendChunk adds one length-prefixed chunk to a blob's byte stream.
func appendChunk(dst []byte, chunk []byte) []byte {
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(chunk)))
	dst = append(dst, prefix[:]...)
	return append(dst, chunk...)
}

// splitChunks parses a blob's byte stream back into the ordered chunk
// sequence. A truncated stream is a decode failure.
func splitChunks(data []byte) ([][]byte, error) {
	var chunks [][]byte
	for len(data) > 0 {
		if len(data) < 4 {
			return nil, fmt.Errorf("%w: truncated chunk length prefix", ErrDecode)
		}

		size := binary.LittleEndian.Uint32(data[:4])
		data = data[4:]

		if uint32(len(data)) < size {
			return nil, fmt.Errorf("%w: chunk truncated (need %d bytes, have %d)", ErrDecode, size, len(data))
		}

		chunks = append(chunks, data[:size])
		data = data[size:]
	}
	return chunks, nil
}
