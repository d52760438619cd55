package wazeroharness

import "go.uber.org/zap"

// ZapLogger adapts a *zap.SugaredLogger to capability.Logger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps log. A nil log yields a no-op logger.
func NewZapLogger(log *zap.Logger) *ZapLogger {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapLogger{sugar: log.Sugar()}
}

func (z *ZapLogger) Infof(format string, args ...any) {
	z.sugar.Infof(format, args...)
}
