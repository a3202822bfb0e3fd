// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the log level and encoding.
type Config struct {
	Level   string
	Format  string // "console" or "json"
	Service string
}

// New builds a zap logger that writes to stderr, keeping stdout free for
// command output.
func New(cfg Config) (*zap.Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	encoding := "console"
	if strings.EqualFold(cfg.Format, "json") {
		encoding = "json"
	} else {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	service := cfg.Service
	if service == "" {
		service = "bloomi"
	}

	zc := zap.Config{
		Level:             zap.NewAtomicLevelAt(levelFromString(cfg.Level)),
		Development:       false,
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		InitialFields: map[string]interface{}{
			"pid":     os.Getpid(),
			"service": service,
		},
	}
	return zc.Build()
}

// levelFromString maps a config level onto zap, defaulting to info.
func levelFromString(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Secret returns a zap field whose value is masked.
func Secret(key, value string) zap.Field {
	return zap.String(key, Mask(value))
}
