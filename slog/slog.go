// Package slog provides logging decorators for the searchqa capability
// interfaces. Each decorator logs one line per call with its duration
// and error.
package slog
