package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestEncodeWAVHeaderSizes(t *testing.T) {
	tests := []struct {
		name       string
		numSamples int
	}{
		{name: "single sample", numSamples: 1},
		{name: "one second at target rate", numSamples: TargetSampleRate},
		{name: "three seconds at target rate", numSamples: 3 * TargetSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := make([]int16, tt.numSamples)
			for i := range samples {
				samples[i] = int16(i % 1000)
			}

			data, err := EncodeWAV(samples, TargetSampleRate)
			if err != nil {
				t.Fatalf("EncodeWAV failed: %v", err)
			}

			dataLen := uint32(tt.numSamples * 2)

			if got := binary.LittleEndian.Uint32(data[4:8]); got != dataLen+36 {
				t.Errorf("RIFF chunk size = %d, want %d", got, dataLen+36)
			}
			if got := binary.LittleEndian.Uint32(data[40:44]); got != dataLen {
				t.Errorf("data chunk size = %d, want %d", got, dataLen)
			}
			if got := len(data); got != int(dataLen)+44 {
				t.Errorf("total payload = %d bytes, want %d", got, dataLen+44)
			}
		})
	}
}

func TestEncodeWAVHeaderFields(t *testing.T) {
	data, err := EncodeWAV([]int16{100, -200, 300}, TargetSampleRate)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Error("Missing RIFF/WAVE markers")
	}
	if string(data[12:16]) != "fmt " || string(data[36:40]) != "data" {
		t.Error("Missing fmt/data chunks")
	}
	if got := binary.LittleEndian.Uint32(data[16:20]); got != 16 {
		t.Errorf("fmt chunk size = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint16(data[20:22]); got != 1 {
		t.Errorf("audio format = %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint16(data[22:24]); got != 1 {
		t.Errorf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != TargetSampleRate {
		t.Errorf("sample rate = %d, want %d", got, TargetSampleRate)
	}
	if got := binary.LittleEndian.Uint32(data[28:32]); got != TargetSampleRate*2 {
		t.Errorf("byte rate = %d, want %d", got, TargetSampleRate*2)
	}
	if got := binary.LittleEndian.Uint16(data[32:34]); got != 2 {
		t.Errorf("block align = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint16(data[34:36]); got != 16 {
		t.Errorf("bits per sample = %d, want 16", got)
	}
}

func TestEncodeDecodeWAVRoundTrip(t *testing.T) {
	original := []int16{100, -200, 300, -400, 32767, -32768}

	data, err := EncodeWAV(original, TargetSampleRate)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	decoded, rate, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}

	if rate != TargetSampleRate {
		t.Errorf("Decoded sample rate = %d, want %d", rate, TargetSampleRate)
	}

	if len(decoded) != len(original) {
		t.Fatalf("Decoded %d samples, want %d", len(decoded), len(original))
	}

	for i, want := range original {
		if decoded[i] != want {
			t.Errorf("Sample %d = %d, want %d", i, decoded[i], want)
		}
	}
}

func TestEncodeWAVEmpty(t *testing.T) {
	if _, err := EncodeWAV([]int16{}, TargetSampleRate); err == nil {
		t.Error("Expected error for empty samples")
	}
}

func TestEncodeWAVInvalidSampleRate(t *testing.T) {
	samples := []int16{100, 200}

	if _, err := EncodeWAV(samples, 0); err == nil {
		t.Error("Expected error for zero sample rate")
	}
	if _, err := EncodeWAV(samples, -16000); err == nil {
		t.Error("Expected error for negative sample rate")
	}
}

func TestValidateWAV(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{name: "too short", data: []byte{1, 2, 3}, expectError: true},
		{name: "bad RIFF marker", data: corruptHeader(0, "FAKE"), expectError: true},
		{name: "bad WAVE marker", data: corruptHeader(8, "EVAW"), expectError: true},
		{name: "bad fmt chunk", data: corruptHeader(12, "tmf "), expectError: true},
		{name: "bad data chunk", data: corruptHeader(36, "atad"), expectError: true},
		{name: "valid payload", data: corruptHeader(0, "RIFF"), expectError: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWAV(tt.data)
			if tt.expectError && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected valid payload, got %v", err)
			}
		})
	}
}

// corruptHeader builds a valid single-sample WAV and overwrites len(s) bytes
// at the given offset.
func corruptHeader(offset int, s string) []byte {
	data, err := EncodeWAV([]int16{1}, TargetSampleRate)
	if err != nil {
		panic(err)
	}
	copy(data[offset:], s)
	return data
}

func TestGetWAVInfo(t *testing.T) {
	samples := make([]int16, TargetSampleRate) // exactly one second
	data, err := EncodeWAV(samples, TargetSampleRate)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	info, err := GetWAVInfo(data)
	if err != nil {
		t.Fatalf("GetWAVInfo failed: %v", err)
	}

	if info.SampleRate != TargetSampleRate {
		t.Errorf("SampleRate = %d, want %d", info.SampleRate, TargetSampleRate)
	}
	if info.Channels != 1 {
		t.Errorf("Channels = %d, want 1", info.Channels)
	}
	if info.BitsPerSample != 16 {
		t.Errorf("BitsPerSample = %d, want 16", info.BitsPerSample)
	}
	if math.Abs(info.Duration-1.0) > 0.001 {
		t.Errorf("Duration = %.3f, want 1.000", info.Duration)
	}
	if info.DataSize != TargetSampleRate*2 {
		t.Errorf("DataSize = %d, want %d", info.DataSize, TargetSampleRate*2)
	}
}
