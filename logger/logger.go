package logger

import "go.uber.org/zap"

// New builds the process logger. Level is one of debug/info/warn/error;
// anything unparsable falls back to info.
func New(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	return cfg.Build()
}
