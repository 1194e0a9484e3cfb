package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Logger is the logging interface used by the library.
type Logger interface {
	Info(msg string, obj any)
	Warn(msg string, obj any)
	Debug(msg string, obj any)
	Error(msg string, obj any)
}

// NopLogger discards all log messages.
type NopLogger struct{}

func (NopLogger) Info(string, any)  {}
func (NopLogger) Warn(string, any)  {}
func (NopLogger) Debug(string, any) {}
func (NopLogger) Error(string, any) {}

type slogLogger struct {
	l *slog.Logger
}

// NewWriterLogger builds a logger that writes tint-formatted lines to w.
// Colour is only used when w is a terminal.
func NewWriterLogger(w io.Writer) Logger {
	if w == nil {
		w = io.Discard
	}
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}
	handler := tint.NewHandler(w, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	})
	return slogLogger{l: slog.New(handler)}
}

func (s slogLogger) log(level slog.Level, msg string, obj any) {
	s.l.LogAttrs(context.Background(), level, msg, attrs(obj)...)
}

func (s slogLogger) Info(msg string, obj any)  { s.log(slog.LevelInfo, msg, obj) }
func (s slogLogger) Warn(msg string, obj any)  { s.log(slog.LevelWarn, msg, obj) }
func (s slogLogger) Debug(msg string, obj any) { s.log(slog.LevelDebug, msg, obj) }
func (s slogLogger) Error(msg string, obj any) { s.log(slog.LevelError, msg, obj) }

// attrs flattens a payload into slog attributes. Maps become one attribute per key
// in sorted order; anything else is logged under "obj".
func attrs(obj any) []slog.Attr {
	switch v := obj.(type) {
	case nil:
		return nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]slog.Attr, 0, len(keys))
		for _, k := range keys {
			if err, ok := v[k].(error); ok {
				out = append(out, tint.Err(err))
				continue
			}
			out = append(out, slog.Any(k, v[k]))
		}
		return out
	case error:
		return []slog.Attr{tint.Err(v)}
	default:
		return []slog.Attr{slog.Any("obj", v)}
	}
}

// Debug writes a debug log when enabled and logger is non-nil.
func Debug(enabled bool, logger Logger, msg string, obj any) {
	if !enabled || logger == nil {
		return
	}
	logger.Debug(msg, obj)
}

// Info writes an info log when logger is non-nil.
func Info(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Info(msg, obj)
}

// Warn writes a warning log when logger is non-nil.
func Warn(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Warn(msg, obj)
}

// Error writes an error log when logger is non-nil.
func Error(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Error(msg, obj)
}
