package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"stocksdash/src/models"
)

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality for one component.
// It wraps a shared logrus logger so every package logs through the same
// sinks with a "component" field attached.
type Logger struct {
	name  string
	entry *logrus.Entry
}

var root = newRoot()

func newRoot() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// -----------------------------------------------------------------------------

// Configure applies the app config to the shared logger: level and optional
// rotating file output. Call once at startup; loggers created earlier pick
// the changes up automatically.
func Configure(cfg *models.MConfig) {
	if cfg == nil {
		return
	}

	if lvl, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel)); err == nil {
		root.SetLevel(lvl)
	}

	if cfg.Logging.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.Logging.File,
			MaxSize:    cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAge:     cfg.Logging.MaxAgeDays,
		}
		root.SetOutput(io.MultiWriter(os.Stdout, rotator))
	}
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance bound to a component name.
func NewLogger(name string) *Logger {
	return &Logger{
		name:  name,
		entry: root.WithField("component", name),
	}
}

// -----------------------------------------------------------------------------

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.entry.Fatalf(format, args...)
}
