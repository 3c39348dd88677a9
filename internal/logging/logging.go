// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT

// Package logging builds the process-wide file logger.
//
// The TUI owns the terminal, so logs never go to stdout or stderr; they
// are written as JSON lines to a size-rotated file under the data
// directory.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the file logger.
type Options struct {
	// Path is the log file location.
	Path string
	// Level is the minimum level written ("debug", "info", "warn", "error").
	Level string
	// MaxSizeMB rotates the file once it exceeds this size.
	MaxSizeMB int
	// MaxBackups is how many rotated files to keep.
	MaxBackups int
}

// New creates a JSON file logger with rotation. The returned logger never
// fails to construct; an unrecognized level falls back to info.
func New(opts Options) *zap.Logger {
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 5
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = 2
	}

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		Compress:   true,
	})

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		writer,
		parseLevel(opts.Level),
	)

	return zap.New(core)
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
