package loader

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	logger atomic.Pointer[zap.Logger]
	nop    = zap.NewNop()
)

// Logger returns the loader package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return nop
}

// SetLogger configures the loader package's logger. Registries created
// afterwards use it unless Config.Logger is set. A nil logger restores the
// no-op logger.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}
