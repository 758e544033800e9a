// Package logger builds the process logger: text to stdout, JSON to a rotating file.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	multi "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel maps a level name to a slog level. Unknown names give info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New creates a logger writing to stdout and, when logFile is set, to a rotated JSON file.
// The returned closer releases the file.
func New(levelStr, logFile string) (*slog.Logger, io.Closer) {
	level := &slog.LevelVar{}
	level.Set(ParseLevel(levelStr))
	opts := &slog.HandlerOptions{Level: level}

	handlers := []slog.Handler{slog.NewTextHandler(os.Stdout, opts)}
	var closer io.Closer = nopCloser{}
	if logFile != "" {
		file := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    32,
			MaxBackups: 10,
			MaxAge:     30,
			Compress:   true,
		}
		handlers = append(handlers, slog.NewJSONHandler(file, opts))
		closer = file
	}

	return slog.New(multi.Fanout(handlers...)), closer
}
