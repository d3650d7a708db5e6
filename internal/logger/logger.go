// Package logger builds the zap loggers used by the engine and the CLI.
package logger

import (
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the logging level.
type LogLevel string

// LogFormat represents the logging format.
type LogFormat string

const (
	// DebugLevel logs debug level messages.
	DebugLevel LogLevel = "DEBUG"
	// InfoLevel logs informational messages.
	InfoLevel LogLevel = "INFO"
	// WarnLevel logs warning messages.
	WarnLevel LogLevel = "WARN"
	// ErrorLevel logs error messages.
	ErrorLevel LogLevel = "ERROR"

	// FormatConsole indicates human-readable console format.
	FormatConsole LogFormat = "CONSOLE"
	// FormatJSON indicates structured JSON format.
	FormatJSON LogFormat = "JSON"
)

// Component names passed to Named.
const (
	ComponentEngine    = "engine"
	ComponentSemantic  = "semantic"
	ComponentWorkspace = "workspace"
	ComponentCache     = "cache"
)

// ParseLevel converts a level name to a zap level. Names are case-insensitive.
func ParseLevel(level string) (zapcore.Level, error) {
	switch LogLevel(strings.ToUpper(level)) {
	case DebugLevel:
		return zapcore.DebugLevel, nil
	case InfoLevel, "":
		return zapcore.InfoLevel, nil
	case WarnLevel, "WARNING":
		return zapcore.WarnLevel, nil
	case ErrorLevel:
		return zapcore.ErrorLevel, nil
	}

	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
}

// ParseFormat validates a format name. Names are case-insensitive.
func ParseFormat(format string) (LogFormat, error) {
	switch f := LogFormat(strings.ToUpper(format)); f {
	case FormatConsole, FormatJSON:
		return f, nil
	case "":
		return FormatConsole, nil
	}

	return FormatConsole, fmt.Errorf("unknown log format %q", format)
}

// timeEncoder encodes the time as a human-readable timestamp.
func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05 MST"))
}

// New creates a zap logger writing to w with the given level and format.
func New(level, format string, w io.Writer) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "component",
		CallerKey:      zapcore.OmitKey,
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	var encoder zapcore.Encoder
	switch f {
	case FormatJSON:
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.EncodeTime = timeEncoder
		encoderConfig.ConsoleSeparator = " | "
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(lvl))

	return zap.New(core), nil
}
