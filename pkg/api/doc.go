// Package api wires the gateway together: configuration, logging, the
// identification pipeline, background sweeps, and the HTTP serving shell.
package api
