// Package logging provides the process-wide zap logger constructor shared
// by the coordinator, the Breeze actors, and Init-BFT, following
// Layr-Labs/eigenx-kms-go's use of *zap.Logger passed by pointer into
// long-lived components.
package logging

import "go.uber.org/zap"

// New builds a production zap logger when debug is false, or a more
// verbose development logger otherwise.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Noop returns a logger that discards everything, for tests that don't
// want log noise.
func Noop() *zap.Logger {
	return zap.NewNop()
}
