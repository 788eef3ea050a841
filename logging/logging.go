// Package logging builds the zap logger; output goes to a rotated file since the terminal belongs to the renderer
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lixenwraith/scrollglow/config"
)

// Name is the root logger name
const Name = "scrollglow"

// New returns a file-backed logger, or a no-op logger when no log file is configured
// The returned close function flushes and releases the file
func New(cfg config.LoggerConfig) (*zap.Logger, func(), error) {
	if cfg.LogFile == "" {
		return zap.NewNop(), func() {}, nil
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	logger, err := NewWithWriter(cfg, zapcore.AddSync(rotator))
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		_ = logger.Sync()
		_ = rotator.Close()
	}
	return logger, closeFn, nil
}

// NewWithWriter builds the logger over an arbitrary sink
// An unparsable level falls back to info
func NewWithWriter(cfg config.LoggerConfig, ws zapcore.WriteSyncer) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level.SetLevel(zap.InfoLevel)
	}

	enc, err := encoder(cfg.Format)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(enc, ws, level)
	return zap.New(core, zap.AddStacktrace(zap.ErrorLevel)).Named(Name), nil
}

func encoder(format string) (zapcore.Encoder, error) {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")

	switch strings.ToLower(format) {
	case "", "console":
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		ec.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(name + ".")
		}
		return zapcore.NewConsoleEncoder(ec), nil
	case "json":
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewJSONEncoder(ec), nil
	default:
		return nil, fmt.Errorf("logger.format %q: expected console or json", format)
	}
}
