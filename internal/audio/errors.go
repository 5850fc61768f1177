package audio

import "errors"

// Pipeline error taxonomy. Capture and recorder errors are reported at the
// point of origin; conversion and transport errors propagate to the caller,
// which decides between fallback and retry.
var (
	// ErrUnsupportedPlatform indicates the host exposes no audio capture
	// facility at all. Fatal, surfaced once at startup.
	ErrUnsupportedPlatform = errors.New("audio capture is not supported on this platform")

	// ErrPermissionDenied indicates the user or OS refused microphone access.
	ErrPermissionDenied = errors.New("microphone access denied")

	// ErrNoCaptureSession indicates a recording was requested without an
	// active capture session.
	ErrNoCaptureSession = errors.New("no active capture session")

	// ErrRecorderBusy indicates Start was called while a recording is
	// already in progress. The second recording is not created.
	ErrRecorderBusy = errors.New("recording already in progress")

	// ErrEmptyRecording indicates a finalized recording contains no audio.
	// Recoverable: the caller should prompt for a re-record.
	ErrEmptyRecording = errors.New("recording contains no audio")

	// ErrDecode indicates the compressed recording could not be decoded.
	// Recoverable: the caller may transmit the original blob unmodified.
	ErrDecode = errors.New("compressed audio is not decodable")

	// ErrEncoding indicates transport encoding failed.
	ErrEncoding = errors.New("base64 transport encoding failed")
)
