// Package config loads application configuration from config.yml, .env
// files and TRANSCRIPTOR_* environment variables, in that order of
// increasing precedence for the environment.
package config
