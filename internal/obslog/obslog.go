// Package obslog constructs the run's logger, mirroring
// ehsanshojaeiiii-sms-gateway's observability/logging.go: a JSON
// production logger by default, a colorized development logger under
// PDU_ENV=development, and an env-driven level via PDU_LOG.
package obslog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.Logger at the given level string ("debug", "info",
// "warn", "error"; invalid or empty falls back to info).
func New(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		parsed = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(parsed)

	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// NewDevelopment builds a colorized, human-oriented logger for local runs.
func NewDevelopment() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, _ := cfg.Build()
	return logger
}

// FromEnv picks a logger based on PDU_ENV and PDU_LOG: PDU_ENV=development
// selects NewDevelopment, otherwise New(level) is built from PDU_LOG
// (default "info"), falling back to NewDevelopment if construction fails.
func FromEnv() *zap.Logger {
	if os.Getenv("PDU_ENV") == "development" {
		return NewDevelopment()
	}

	level := os.Getenv("PDU_LOG")
	if level == "" {
		level = "info"
	}

	logger, err := New(level)
	if err != nil {
		return NewDevelopment()
	}
	return logger
}
