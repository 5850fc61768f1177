// Package words holds the fixed Vietnamese practice vocabulary.
// The list is ordered (short words first) and the order defines session
// progression, so it must stay stable for the lifetime of the process.
package words
