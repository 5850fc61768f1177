// Package store persists pronunciation attempts in an embedded Badger
// database so a learner's history and per-word statistics survive restarts.
package store
