// Package logging builds the console logger used by the pagekeep CLI.
//
// Entries below error level go to stdout, errors go to stderr. The
// "quiet" level keeps only errors. The logger is unnamed; the converter
// names its own entries "pagekeep".
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Levels accepted by New.
const (
	Quiet  = "quiet"
	Normal = "normal"
	Debug  = "debug"
)

// New returns a logger writing to stdout and stderr at the given level.
// An empty level means Normal.
func New(level string, stdout, stderr io.Writer) (*zap.Logger, error) {
	var low zapcore.Level
	switch level {
	case "", Normal:
		low = zapcore.InfoLevel
	case Debug:
		low = zapcore.DebugLevel
	case Quiet:
		low = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("unknown log level %q (must be quiet, normal, or debug)", level)
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.TimeKey = zapcore.OmitKey
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	enc := zapcore.NewConsoleEncoder(ec)

	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return low <= lvl && lvl < zapcore.ErrorLevel
	})
	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(stdout)), lowPriority),
		zapcore.NewCore(enc.Clone(), zapcore.Lock(zapcore.AddSync(stderr)), highPriority),
	)
	return zap.New(core), nil
}
