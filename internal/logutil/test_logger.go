// Package logutil provides logging utilities for codecrucible
package logutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

// TestLogger is a logger implementation for testing that captures log messages
type TestLogger struct {
	t         *testing.T
	logs      []string
	logsMutex sync.Mutex
	prefix    string
	level     LogLevel
	// root is the logger that owns logs/logsMutex; set on loggers derived via
	// WithContext so captured messages all land in one place.
	root *TestLogger
}

// Ensure TestLogger implements LoggerInterface
var _ LoggerInterface = (*TestLogger)(nil)

// NewTestLogger creates a new test logger
func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{
		t:     t,
		logs:  []string{},
		level: DebugLevel,
	}
}

// WithContext returns a logger with context information attached. The
// correlation ID, if present, is folded into the prefix of every subsequent
// captured message.
func (l *TestLogger) WithContext(ctx context.Context) LoggerInterface {
	id := GetCorrelationID(ctx)
	if id == "" {
		return l
	}
	root := l.root
	if root == nil {
		root = l
	}
	return &TestLogger{
		t:      l.t,
		prefix: fmt.Sprintf("%s[correlation_id=%s] ", l.prefix, id),
		level:  l.level,
		root:   root,
	}
}

// DebugContext logs a debug message, annotating it with the context's correlation ID.
func (l *TestLogger) DebugContext(ctx context.Context, format string, args ...interface{}) {
	l.WithContext(ctx).(*TestLogger).Debug(format, args...)
}

// InfoContext logs an info message, annotating it with the context's correlation ID.
func (l *TestLogger) InfoContext(ctx context.Context, format string, args ...interface{}) {
	l.WithContext(ctx).(*TestLogger).Info(format, args...)
}

// WarnContext logs a warning message, annotating it with the context's correlation ID.
func (l *TestLogger) WarnContext(ctx context.Context, format string, args ...interface{}) {
	l.WithContext(ctx).(*TestLogger).Warn(format, args...)
}

// ErrorContext logs an error message, annotating it with the context's correlation ID.
func (l *TestLogger) ErrorContext(ctx context.Context, format string, args ...interface{}) {
	l.WithContext(ctx).(*TestLogger).Error(format, args...)
}

// FatalContext logs a fatal message, annotating it with the context's correlation ID.
// It does not exit the process.
func (l *TestLogger) FatalContext(ctx context.Context, format string, args ...interface{}) {
	l.WithContext(ctx).(*TestLogger).Fatal(format, args...)
}

// Debug logs a debug message
func (l *TestLogger) Debug(format string, args ...interface{}) {
	if l.level <= DebugLevel {
		msg := fmt.Sprintf(format, args...)
		l.t.Logf("[DEBUG] %s%s", l.prefix, msg)
		l.captureLog(fmt.Sprintf("[DEBUG] %s%s", l.prefix, msg))
	}
}

// Info logs an info message
func (l *TestLogger) Info(format string, args ...interface{}) {
	if l.level <= InfoLevel {
		msg := fmt.Sprintf(format, args...)
		l.t.Logf("[INFO] %s%s", l.prefix, msg)
		l.captureLog(fmt.Sprintf("[INFO] %s%s", l.prefix, msg))
	}
}

// Warn logs a warning message
func (l *TestLogger) Warn(format string, args ...interface{}) {
	if l.level <= WarnLevel {
		msg := fmt.Sprintf(format, args...)
		l.t.Logf("[WARN] %s%s", l.prefix, msg)
		l.captureLog(fmt.Sprintf("[WARN] %s%s", l.prefix, msg))
	}
}

// Error logs an error message
func (l *TestLogger) Error(format string, args ...interface{}) {
	if l.level <= ErrorLevel {
		msg := fmt.Sprintf(format, args...)
		l.t.Logf("[ERROR] %s%s", l.prefix, msg)
		l.captureLog(fmt.Sprintf("[ERROR] %s%s", l.prefix, msg))
	}
}

// Fatal logs a fatal message
func (l *TestLogger) Fatal(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.t.Logf("[FATAL] %s%s", l.prefix, msg)
	l.captureLog(fmt.Sprintf("[FATAL] %s%s", l.prefix, msg))
	// Don't call os.Exit in tests
}

// Println implements LoggerInterface by logging at info level
func (l *TestLogger) Println(v ...interface{}) {
	l.Info(fmt.Sprintln(v...))
}

// Printf implements LoggerInterface by logging at info level
func (l *TestLogger) Printf(format string, v ...interface{}) {
	l.Info(format, v...)
}

// captureLog captures a log message for later inspection
func (l *TestLogger) captureLog(msg string) {
	root := l.root
	if root == nil {
		root = l
	}
	root.logsMutex.Lock()
	defer root.logsMutex.Unlock()
	root.logs = append(root.logs, msg)
}

// GetTestLogs returns all captured log messages
func (l *TestLogger) GetTestLogs() []string {
	root := l.root
	if root == nil {
		root = l
	}
	root.logsMutex.Lock()
	defer root.logsMutex.Unlock()
	// Return a copy to avoid race conditions
	logs := make([]string, len(root.logs))
	copy(logs, root.logs)
	return logs
}

// ClearTestLogs clears all captured log messages
func (l *TestLogger) ClearTestLogs() {
	root := l.root
	if root == nil {
		root = l
	}
	root.logsMutex.Lock()
	defer root.logsMutex.Unlock()
	root.logs = []string{}
}
