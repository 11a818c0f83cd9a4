package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"TigerChart/internal/config"
)

const (
	// ServiceName is attached to every entry.
	ServiceName = "tigerchart"
	// RequestIDField is the field key shared by HTTP and pipeline logs.
	RequestIDField = "request_id"
)

// New creates a zap.Logger configured from the log section of the config.
// Stdout follows Format/Environment; the optional file is always JSON and rotated.
func New(opts config.LogConfig) (*zap.Logger, error) {
	lvl, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	console := opts.Environment == "dev" || opts.Format == "console"
	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(console), zapcore.Lock(os.Stdout), lvl),
	}
	if opts.OutputFile != "" {
		w, err := rotatingWriter(opts.OutputFile)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(newEncoder(false), w, lvl))
	}

	return zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service", ServiceName)),
	), nil
}

// ForRequest scopes log to one chart request. A nil log yields a no-op logger.
func ForRequest(log *zap.Logger, requestID string, fields ...zap.Field) *zap.Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return log.With(append([]zap.Field{zap.String(RequestIDField, requestID)}, fields...)...)
}

func parseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return lvl, fmt.Errorf("invalid log level: %w", err)
	}
	return lvl, nil
}

func newEncoder(console bool) zapcore.Encoder {
	if console {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		return zapcore.NewConsoleEncoder(cfg)
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(cfg)
}

func rotatingWriter(path string) (zapcore.WriteSyncer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     7, // days
		Compress:   true,
	}), nil
}
