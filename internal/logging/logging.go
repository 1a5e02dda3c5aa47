package logging

import (
	"github.com/pion/logging"
)

var loggerFactory logging.LoggerFactory = logging.NewDefaultLoggerFactory()

// NewLogger returns a leveled logger for scope from the package-wide factory.
func NewLogger(scope string) logging.LeveledLogger {
	return loggerFactory.NewLogger(scope)
}

// Factory returns f when it is set, otherwise the package-wide factory.
func Factory(f logging.LoggerFactory) logging.LoggerFactory {
	if f == nil {
		return loggerFactory
	}
	return f
}
