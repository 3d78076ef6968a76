// Package logging builds the logr.Logger used across planflow, backed by zap.
package logging

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels passed to logger.V().
const (
	DEFAULT = 0
	VERBOSE = 1
	DEBUG   = 2
	TRACE   = 3
)

// New builds a zap-backed logger. level is one of "info", "verbose",
// "debug" or "trace". development switches to the human-readable encoder.
func New(level string, development bool) (logr.Logger, error) {
	verbosity, err := ParseLevel(level)
	if err != nil {
		return logr.Discard(), err
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	// logr V(n) maps to zap level -n.
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))

	zapLog, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return logr.Discard(), fmt.Errorf("build zap logger: %w", err)
	}
	return zapr.NewLogger(zapLog), nil
}

// ParseLevel maps a level name to a logr verbosity.
func ParseLevel(level string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return DEFAULT, nil
	case "verbose":
		return VERBOSE, nil
	case "debug":
		return DEBUG, nil
	case "trace":
		return TRACE, nil
	default:
		return DEFAULT, fmt.Errorf("unknown log level %q", level)
	}
}

// NewTestLogger creates a development logger that prints everything.
func NewTestLogger() logr.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-TRACE))
	zapLog, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return logr.Discard()
	}
	return zapr.NewLogger(zapLog)
}
