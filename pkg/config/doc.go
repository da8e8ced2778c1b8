// Package config resolves gateway configuration from built-in defaults, an
// optional YAML file, and environment variables, in that order of precedence.
package config
