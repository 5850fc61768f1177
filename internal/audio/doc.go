// Package audio implements the client-side recording pipeline: microphone
// capture, timed recording with auto-stop, conversion of compressed recordings
// to 16 kHz mono 16-bit PCM WAV, and base64 transport encoding.
package audio
