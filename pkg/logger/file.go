package logger

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// FileLogger appends timestamped lines to a log file:
//
//	[2006-01-02 15:04:05] [INFO] Task started: Intro (ID: ...)
type FileLogger struct {
	mu  sync.Mutex
	f   *os.File
	now func() time.Time
}

// NewFileLogger opens path for appending, creating it when missing.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &FileLogger{f: f, now: time.Now}, nil
}

func (l *FileLogger) write(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return
	}
	ts := l.now().Format("2006-01-02 15:04:05")
	// Write errors are dropped; a broken log file must not stop a run.
	_, _ = fmt.Fprintf(l.f, "[%s] [%s] %s\n", ts, level, fmt.Sprintf(format, args...))
}

// Info appends an INFO line.
func (l *FileLogger) Info(format string, args ...interface{}) {
	l.write("INFO", format, args...)
}

// Warning appends a WARNING line.
func (l *FileLogger) Warning(format string, args ...interface{}) {
	l.write("WARNING", format, args...)
}

// Error appends an ERROR line.
func (l *FileLogger) Error(format string, args ...interface{}) {
	l.write("ERROR", format, args...)
}

// Close closes the file. Later writes are dropped.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

var _ Logger = (*FileLogger)(nil)
