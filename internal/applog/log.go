package applog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Unknown levels fall back to info.
func New(level string, production bool) (*zap.Logger, error) {
	conf := zap.NewProductionConfig()
	if !production {
		conf = zap.NewDevelopmentConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	conf.Level = zap.NewAtomicLevelAt(lvl)
	conf.DisableStacktrace = true

	return conf.Build()
}
