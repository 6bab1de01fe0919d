package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the level and the fields stamped on every entry.
type Options struct {
	Level       string
	Service     string
	Environment string
}

// New constructs a zap.Logger configured for structured JSON logging.
func New(opts Options) (*zap.Logger, error) {
	zapLevel := zapcore.InfoLevel
	if opts.Level != "" {
		if err := zapLevel.Set(strings.ToLower(opts.Level)); err != nil {
			return nil, err
		}
	}

	initial := map[string]any{}
	if opts.Service != "" {
		initial["service"] = opts.Service
	}
	if opts.Environment != "" {
		initial["env"] = opts.Environment
	}

	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeDuration = zapcore.MillisDurationEncoder

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.Development = strings.EqualFold(opts.Environment, "development")
	cfg.EncoderConfig = enc
	cfg.InitialFields = initial
	cfg.OutputPaths = []string{"stdout"}
	// Sampling off: every cell outcome is logged.
	cfg.Sampling = nil

	return cfg.Build()
}
