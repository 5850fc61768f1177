package audio

import (
	"fmt"
	"math"

	opus "github.com/jj11hh/opus"
)

// ToWAV converts a finalized recording blob into the fixed gateway format:
// 16 kHz mono 16-bit PCM WAV. An empty blob is a terminal no-audio condition,
// not a zero-sample WAV. On ErrDecode the caller may fall back to
// transmitting the original blob unmodified.
func ToWAV(blob Blob) ([]byte, error) {
	if blob.Empty() {
		return nil, ErrEmptyRecording
	}

	samples, err := DecodeBlob(blob)
	if err != nil {
		return nil, err
	}

	if blob.SampleRate != TargetSampleRate {
		samples = Resample(samples, blob.SampleRate, TargetSampleRate)
	}

	return EncodeWAV(Quantize(samples), TargetSampleRate)
}

// DecodeBlob decodes a compressed blob into raw float32 samples at the
// blob's native sample rate. Only channel 0 is kept.
func DecodeBlob(blob Blob) ([]float32, error) {
	if blob.MediaType != MediaTypeOpus {
		return nil, fmt.Errorf("%w: unknown media type %q", ErrDecode, blob.MediaType)
	}

	chunks, err := splitChunks(blob.Data)
	if err != nil {
		return nil, err
	}

	dec, err := opus.NewDecoder(blob.SampleRate, TargetChannels)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	// Opus frames are at most 60 ms.
	frame := make([]float32, blob.SampleRate*60/1000)
	samples := make([]float32, 0, blob.SampleRate*len(chunks)*opusFrameMillis/1000)

	for i, chunk := range chunks {
		n, err := dec.DecodeFloat32(chunk, frame)
		if err != nil {
			return nil, fmt.Errorf("%w: chunk %d: %v", ErrDecode, i, err)
		}
		samples = append(samples, frame[:n]...)
	}

	return samples, nil
}

// Resample converts samples from srcRate to dstRate by linear interpolation
// between the two nearest source samples; the last sample is held when no
// right neighbor exists. Equal rates are the identity.
func Resample(src []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || len(src) == 0 {
		out := make([]float32, len(src))
		copy(out, src)
		return out
	}

	ratio := float64(srcRate) / float64(dstRate)
	n := int(math.Round(float64(len(src)) * float64(dstRate) / float64(srcRate)))
	out := make([]float32, n)

	for i := 0; i < n; i++ {
		pos := float64(i) * ratio
		left := int(pos)
		frac := pos - float64(left)

		if left >= len(src)-1 {
			out[i] = src[len(src)-1]
			continue
		}

		out[i] = src[left] + float32(frac)*(src[left+1]-src[left])
	}

	return out
}

// Quantize converts float samples to 16-bit signed integers. Each sample is
// clamped to [-1,1] before scaling; negative values scale by 32768 and
// non-negative by 32767, preserving the full two's-complement range. The
// asymmetric scaling is part of the validated wire format and must not be
// collapsed to a single factor.
func Quantize(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}

		if s < 0 {
			out[i] = int16(s * 32768)
		} else {
			out[i] = int16(s * 32767)
		}
	}
	return out
}
