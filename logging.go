package lpbuild

import (
	"time"

	"go.uber.org/zap"
)

// PassEvent describes one completed resolution pass for logging.
type PassEvent struct {
	RunID    string
	Pass     int
	Resolved int
	Pending  int
	Values   int
	Objects  int
	Duration time.Duration
}

// Logger records resolver events.
type Logger interface {
	LogPass(PassEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(PassEvent)

// LogPass implements Logger.
func (f LoggerFunc) LogPass(event PassEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogPass(PassEvent) {}

// NewZapLogger adapts a zap logger to the resolver's Logger interface.
func NewZapLogger(logger *zap.Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return LoggerFunc(func(event PassEvent) {
		logger.Debug("resolution pass",
			zap.String("run", event.RunID),
			zap.Int("pass", event.Pass),
			zap.Int("resolved", event.Resolved),
			zap.Int("pending", event.Pending),
			zap.Int("values", event.Values),
			zap.Int("objects", event.Objects),
			zap.Duration("duration", event.Duration),
		)
	})
}
