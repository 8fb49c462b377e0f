package logger

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Log struct {
	LogLevel zapcore.Level `yaml:"level" envconfig:"LOG_LEVEL"`
	// Sink is a file path. Empty means stdout.
	Sink string `yaml:"sink" envconfig:"LOG_SINK"`
}

// NewLogger writes JSON to cfg.Sink. A sink that cannot be opened falls back
// to stdout and the first entry says so.
func NewLogger(cfg Log, name string) *zap.Logger {
	ws, sinkErr := openSink(cfg.Sink)
	log := newLogger(cfg, ws).Named(name)
	if sinkErr != nil {
		warnSinkFallback(log, cfg.Sink, sinkErr)
	}
	return log
}

func warnSinkFallback(log *zap.Logger, sink string, err error) {
	log.Warn("log sink unavailable, writing to stdout", zap.String("sink", sink), zap.Error(err))
}

func newLogger(cfg Log, ws zapcore.WriteSyncer) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, zap.NewAtomicLevelAt(cfg.LogLevel))
	return zap.New(core, zap.AddCaller())
}

// openSink returns stdout for an empty path, and stdout with the open error
// when the file cannot be opened.
func openSink(path string) (zapcore.WriteSyncer, error) {
	stdout := zapcore.Lock(os.Stdout)
	if path == "" {
		return stdout, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return stdout, errors.Wrap(err, "open log sink")
	}
	return zapcore.AddSync(f), nil
}
