// Package validation provides request validation: a fluent builder for
// ad-hoc checks and tag-driven struct validation backed by
// go-playground/validator.
package validation
