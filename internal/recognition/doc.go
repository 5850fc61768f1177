// Package recognition implements the speech-to-text gateway clients and the
// pronunciation verdict logic. Providers are opaque network services; the
// checker normalizes their transcripts and compares against the expected word.
package recognition
