// Package obs centralizes structured logging for the core so individual
// packages never import zap directly.
package obs

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the package-wide logger. It is a no-op logger until
// SetLogger is called, so library code never panics or writes to stderr
// when the embedder hasn't configured one.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger installs the logger used by the rest of the core. Intended to
// be called once, early, by an embedding application.
func SetLogger(l *zap.Logger) {
	loggerOnce.Do(func() {})
	logger = l
}
