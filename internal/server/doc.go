// Package server implements the HTTP API: the word list, the pronunciation
// check endpoint consuming base64 WAV payloads, attempt history and
// monitoring endpoints.
package server
