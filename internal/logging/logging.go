// Package logging provides the process-wide diagnostic logger. User-facing
// output goes straight to stderr in cmd/vetsh; this logger only carries
// debug detail enabled with --verbose.
package logging

import (
	"go.uber.org/zap"
)

var logger = zap.NewNop().Sugar()

// Init configures the global logger. With verbose enabled it logs at debug
// level in the development console format; otherwise only warnings and
// above are emitted.
func Init(verbose bool) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Encoding = "console"

	l, err := cfg.Build()
	if err != nil {
		panic("initializing logger: " + err.Error())
	}
	logger = l.Sugar()
}

// L returns the global logger. Before Init it is a no-op logger, so
// packages can log unconditionally.
func L() *zap.SugaredLogger {
	return logger
}

// Sync flushes any buffered log entries. Sync errors are ignored; stderr
// is typically not syncable.
func Sync() {
	_ = logger.Sync()
}
