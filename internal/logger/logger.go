// Package logger configures the process wide zap logger for the
// build3d commands. Console output goes to stderr so the model paths
// printed on stdout stay machine readable; an optional log file is
// size rotated through lumberjack.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process logger. It is a nop until Init runs.
var Log = zap.NewNop()

// Log file rotation bounds.
const (
	fileMaxSizeMB  = 100
	fileMaxBackups = 5
	fileMaxAgeDays = 28
)

// Init replaces Log with a logger writing to stderr and, when logFile
// is not empty, to a size rotated file at that path. Level is one of
// debug, info, warn or error; anything else means info.
func Init(level, logFile string) {
	lvl := parseLevel(level)
	cores := []zapcore.Core{zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig("15:04:05")),
		zapcore.AddSync(os.Stderr),
		lvl,
	)}
	if logFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    fileMaxSizeMB,
			MaxBackups: fileMaxBackups,
			MaxAge:     fileMaxAgeDays,
			Compress:   true,
			LocalTime:  true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig("2006-01-02T15:04:05.000Z0700")),
			zapcore.AddSync(rotated),
			lvl,
		))
	}
	Log = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

// Sync flushes buffered entries. Call it before process exit.
func Sync() {
	_ = Log.Sync()
}

func encoderConfig(timeLayout string) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		CallerKey:        "caller",
		EncodeTime:       zapcore.TimeEncoderOfLayout(timeLayout),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: " ",
	}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
