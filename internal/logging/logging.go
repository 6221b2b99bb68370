// Package logging builds the application logger and defines the small
// key-value interface the service layer depends on.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger passed into services. It follows the
// key-value style of zap's sugared logger so call sites stay uniform.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// New builds the process-wide zap logger. Development gets the console
// encoder, everything else structured JSON. Unknown levels fall back to info.
func New(level, environment string) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	if environment == "development" {
		cfg = zap.NewDevelopmentConfig()
	}
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

type zapLogger struct {
	s *zap.SugaredLogger
}

func (l zapLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l zapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l zapLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}

// Wrap adapts a zap sugared logger to the Logger interface.
func Wrap(s *zap.SugaredLogger) Logger {
	return zapLogger{s: s}
}

// Nop returns a Logger that discards everything. Meant for tests and for
// components constructed without an explicit logger.
func Nop() Logger {
	return zapLogger{s: zap.NewNop().Sugar()}
}
