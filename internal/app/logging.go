package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLogLevel parses a level name. "warning" is accepted for "warn";
// case is ignored.
func ParseLogLevel(s string) (zapcore.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(s)
}

// LoggerConfig configures the logger.
type LoggerConfig struct {
	// Level is the minimum level to write.
	Level string

	// File is appended to when set.
	File string

	// Output is used when File is empty. Defaults to os.Stderr.
	Output io.Writer

	// JSON selects the JSON encoder instead of the console one.
	JSON bool
}

// DefaultLoggerConfig returns the default logger configuration.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:  "info",
		Output: os.Stderr,
	}
}

// NewLogger builds a zap logger. The returned close function syncs the
// logger and closes the log file, if any.
func NewLogger(cfg LoggerConfig) (*zap.Logger, func(), error) {
	level, err := ParseLogLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	var sink zapcore.WriteSyncer
	closeFile := func() {}
	switch {
	case cfg.File != "":
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		sink = zapcore.Lock(f)
		closeFile = func() { _ = f.Close() }
	case cfg.Output != nil:
		sink = zapcore.AddSync(cfg.Output)
	default:
		sink = zapcore.Lock(os.Stderr)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")

	var enc zapcore.Encoder
	if cfg.JSON {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	logger := zap.New(zapcore.NewCore(enc, sink, level))
	return logger, func() {
		_ = logger.Sync()
		closeFile()
	}, nil
}
