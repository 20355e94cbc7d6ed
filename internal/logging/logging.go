// Package logging builds the zap loggers used across pocket-madlibs.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls where and how much is logged
type Options struct {
	// Dir receives madlibs.log when Console is false
	Dir     string
	Level   string
	Console bool
}

// New creates a logger. Console loggers write human-readable output to
// stderr; otherwise JSON lines are appended to Dir/madlibs.log so the TUI
// keeps the terminal to itself.
func New(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = zap.NewAtomicLevelAt(parsed)
	}

	var config zap.Config
	if opts.Console {
		config = zap.NewDevelopmentConfig()
		config.OutputPaths = []string{"stderr"}
	} else {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		config = zap.NewProductionConfig()
		config.OutputPaths = []string{filepath.Join(opts.Dir, "madlibs.log")}
		config.ErrorOutputPaths = []string{filepath.Join(opts.Dir, "madlibs.log")}
	}
	config.Level = level

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}
