package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/smane4123/PitchPulse/pkg/telemetry"
)

// Config holds logger configuration
type Config struct {
	Level       string
	ServiceName string
	Development bool
}

// Logger wraps zap.SugaredLogger
type Logger struct {
	sugar *zap.SugaredLogger
}

var globalLogger *Logger

// Init initializes the global logger
func Init(cfg *Config) error {
	if cfg == nil {
		cfg = &Config{Level: "info", Development: true}
	}

	var zapCfg zap.Config
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	if lvl, err := zapcore.ParseLevel(cfg.Level); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	base, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	if cfg.ServiceName != "" {
		base = base.With(zap.String("service", cfg.ServiceName))
	}

	globalLogger = &Logger{sugar: base.Sugar()}
	return nil
}

// Get returns the global logger, initializing a default one if needed
func Get() *Logger {
	if globalLogger == nil {
		_ = Init(nil)
	}
	return globalLogger
}

// Sync flushes any buffered log entries
func Sync() error {
	if globalLogger != nil {
		return globalLogger.sugar.Sync()
	}
	return nil
}

// With returns a logger with additional structured context
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.sugar.Fatalw(msg, keysAndValues...)
}

// InfoContext logs with the trace ID from context attached
func (l *Logger) InfoContext(ctx context.Context, msg string, keysAndValues ...interface{}) {
	l.withTrace(ctx).Infow(msg, keysAndValues...)
}

// WarnContext logs with the trace ID from context attached
func (l *Logger) WarnContext(ctx context.Context, msg string, keysAndValues ...interface{}) {
	l.withTrace(ctx).Warnw(msg, keysAndValues...)
}

// ErrorContext logs with the trace ID from context attached
func (l *Logger) ErrorContext(ctx context.Context, msg string, keysAndValues ...interface{}) {
	l.withTrace(ctx).Errorw(msg, keysAndValues...)
}

func (l *Logger) withTrace(ctx context.Context) *zap.SugaredLogger {
	if traceID := telemetry.GetTraceID(ctx); traceID != "" {
		return l.sugar.With("trace_id", traceID)
	}
	return l.sugar
}
