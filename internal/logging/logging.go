// Package logging builds the zap logger of the objmap command.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"object-mapper/internal/config"
)

// New builds a logger from s. An empty level means info.
func New(s config.LogSettings) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if s.Level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(s.Level))); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}

	cfg := zap.NewProductionConfig()
	if s.Development {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	if s.Encoding != "" {
		cfg.Encoding = s.Encoding
	}

	if cfg.Encoding == "console" {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.Named("objmap"), nil
}
