// Package config provides configuration loading and validation for the
// pronunciation trainer. It handles YAML-based configuration with struct
// validation for the HTTP server, audio pipeline, recognition gateway,
// attempt store and logging.
package config
