package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options configures a LogrusLogger.
type Options struct {
	// Level is one of debug, info, warn or error. Unknown values fall back to info.
	Level string
	// Format is "json" or "text".
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// LogrusLogger adapts a logrus entry to the Logger interface.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger builds a logger from opts.
func NewLogrusLogger(opts Options) *LogrusLogger {
	base := logrus.New()

	switch strings.ToLower(opts.Format) {
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{})
	default:
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	base.SetOutput(out)

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	return &LogrusLogger{entry: logrus.NewEntry(base)}
}

func (l *LogrusLogger) Debug(ctx context.Context, msg string, fields map[string]interface{}) {
	l.emit(ctx, logrus.DebugLevel, msg, fields)
}

func (l *LogrusLogger) Info(ctx context.Context, msg string, fields map[string]interface{}) {
	l.emit(ctx, logrus.InfoLevel, msg, fields)
}

func (l *LogrusLogger) Warn(ctx context.Context, msg string, fields map[string]interface{}) {
	l.emit(ctx, logrus.WarnLevel, msg, fields)
}

func (l *LogrusLogger) Error(ctx context.Context, msg string, fields map[string]interface{}) {
	l.emit(ctx, logrus.ErrorLevel, msg, fields)
}

func (l *LogrusLogger) WithField(key string, value interface{}) Logger {
	return &LogrusLogger{entry: l.entry.WithField(key, value)}
}

func (l *LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(fields)}
}

func (l *LogrusLogger) emit(ctx context.Context, level logrus.Level, msg string, fields map[string]interface{}) {
	entry := l.entry
	if ctx != nil {
		entry = entry.WithContext(ctx)
	}
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Log(level, msg)
}
