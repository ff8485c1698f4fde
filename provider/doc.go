// Package provider implements a generic provider framework using Go
// generics for swappable backends.
//
// It provides a registry for managing multiple provider implementations
// with factory-based instantiation and availability checking. The
// transcription engines register here and are selected by name from
// configuration.
package provider
