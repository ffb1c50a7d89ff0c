// Package logging builds the zap loggers used by the CLI and the
// custom-resource handlers.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment selects the log encoding.
type Environment string

const (
	// EnvironmentProduction logs JSON, as read by CloudWatch Logs.
	EnvironmentProduction Environment = "production"

	// EnvironmentDevelopment logs human readable console lines.
	EnvironmentDevelopment Environment = "development"
)

// Config holds the configuration for the logger.
type Config struct {
	// Level is the minimum enabled logging level (debug, info, warn, error).
	Level string

	// Environment determines the log format (production = JSON, development = console).
	Environment Environment

	// OutputPaths is a list of URLs or file paths to write logging output to.
	OutputPaths []string

	// ErrorOutputPaths is a list of URLs or file paths to write internal logger errors to.
	ErrorOutputPaths []string

	DisableCaller     bool
	DisableStacktrace bool
}

// DefaultConfig returns the CLI configuration. Logs go to stderr so that
// templates written to stdout stay parseable.
func DefaultConfig() Config {
	return Config{
		Level:            "info",
		Environment:      EnvironmentDevelopment,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
}

// NewLogger creates a zap logger from cfg.
func NewLogger(cfg Config) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Environment == EnvironmentProduction {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}
	errorOutputs := cfg.ErrorOutputPaths
	if len(errorOutputs) == 0 {
		errorOutputs = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Environment != EnvironmentProduction,
		DisableCaller:     cfg.DisableCaller,
		DisableStacktrace: cfg.DisableStacktrace,
		Encoding:          encodingFromEnvironment(cfg.Environment),
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  errorOutputs,
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// NewDevelopmentLogger creates a debug-level console logger.
func NewDevelopmentLogger() (*zap.Logger, error) {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	return NewLogger(cfg)
}

// NewProductionLogger creates a JSON logger writing to stdout, the stream
// Lambda forwards to CloudWatch Logs.
func NewProductionLogger(level string) (*zap.Logger, error) {
	if level == "" {
		level = "info"
	}
	return NewLogger(Config{
		Level:            level,
		Environment:      EnvironmentProduction,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

func encodingFromEnvironment(env Environment) string {
	if env == EnvironmentProduction {
		return "json"
	}
	return "console"
}

// ParseLevel converts a string level to zapcore.Level.
func ParseLevel(level string) (zapcore.Level, error) {
	return zapcore.ParseLevel(strings.ToLower(level))
}

// MustNewLogger creates a new logger and panics if there's an error.
func MustNewLogger(cfg Config) *zap.Logger {
	logger, err := NewLogger(cfg)
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}
	return logger
}
