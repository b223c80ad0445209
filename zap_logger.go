package evfsm // import "github.com/orkestr8/evfsm"

import (
	"go.uber.org/zap"
)

// ZapLogger adapts a *zap.SugaredLogger to the Logger capability expected
// throughout this package. Debug/Info/Error map onto the sugared
// logger's *w (With-fields) variants so key-value pairs survive as
// structured fields rather than being formatted into the message.
//
// Grounded on go.uber.org/zap (Lildeebo2002-lnd/go.mod, indirect) - see
// SPEC_FULL.md §10.1.
type ZapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger wraps a *zap.Logger for use as a Runtime/Worker Logger.
func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{s: l.Sugar()}
}

// NewProductionZapLogger builds a default production zap.Logger and
// wraps it. It panics if zap's production config fails to build, which
// only happens on a broken encoder configuration.
func NewProductionZapLogger() *ZapLogger {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return NewZapLogger(l)
}

func (z *ZapLogger) Debug(msg string, args ...interface{}) { z.s.Debugw(msg, args...) }
func (z *ZapLogger) Error(msg string, args ...interface{}) { z.s.Errorw(msg, args...) }
func (z *ZapLogger) Info(msg string, args ...interface{})  { z.s.Infow(msg, args...) }

// Sync flushes any buffered log entries, per zap convention of calling
// Sync before process exit.
func (z *ZapLogger) Sync() error { return z.s.Sync() }
