// Package logger provides structured logging built on zerolog.
//
// Pipeline stages obtain component-tagged loggers via WithComponent so
// every line carries its origin. Logs go to stderr by default; stdout is
// reserved for the progress display.
package logger
