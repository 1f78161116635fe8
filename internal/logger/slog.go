package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/natefinch/lumberjack"

	"github.com/arko-chat/geobridge/internal/sdk"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// New builds the process logger. The level lives in level so config
// reloads and setLogLevel can change it while running.
func New(w io.Writer, format Format, level *slog.LevelVar) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warning":
		return slog.LevelWarn, nil
	case "":
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// FromSDK maps an SDK log level onto slog. LogLevelNone maps above
// every level slog emits.
func FromSDK(level sdk.LogLevel) slog.Level {
	switch level {
	case sdk.LogLevelNone:
		return slog.LevelError + 4
	case sdk.LogLevelError:
		return slog.LevelError
	case sdk.LogLevelWarning:
		return slog.LevelWarn
	case sdk.LogLevelInfo:
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// RotatingFile returns a writer appending to path that rotates the file
// once it reaches 10 MB, keeping three old copies for 28 days.
func RotatingFile(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
}
