// Package errors defines the typed error model shared by every pipeline
// stage: machine-readable codes, stage attribution, retryable detection
// and the exit-code mapping for terminal run states.
package errors
