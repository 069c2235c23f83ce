// Package logging builds the zap logger used across studydesk.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config mirrors config.LogConfig but avoids importing the config package here.
type Config struct {
	Level    string
	Encoding string
	File     string
}

// New builds a zap.Logger using the provided configuration.
// Logs go to stderr unless File is set, in which case they are appended
// there. The returned cleanup flushes the logger and closes the file; call
// it once the logger is no longer used.
func New(cfg Config) (*zap.Logger, func(), error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.WarnLevel
	if cfg.Level != "" {
		if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
			// fall back to warn level if parsing fails
			level = zapcore.WarnLevel
		}
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Encoding) {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	default:
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	sink, closeSink, err := openSink(cfg.File)
	if err != nil {
		return nil, nil, err
	}

	logger := zap.New(zapcore.NewCore(encoder, sink, level))
	cleanup := func() {
		_ = logger.Sync()
		closeSink()
	}
	return logger, cleanup, nil
}

func openSink(path string) (zapcore.WriteSyncer, func(), error) {
	if path == "" {
		return zapcore.Lock(os.Stderr), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	sink, closeSink, err := zap.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return sink, closeSink, nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
