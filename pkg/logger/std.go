package logger

import (
	"log"
	"strings"
)

// ToStdLogger adapts l to a *log.Logger for components that take one.
// Every line is logged at Info level.
func ToStdLogger(l Logger) *log.Logger {
	if sl, ok := l.(*StandardLogger); ok {
		return sl.logger
	}
	return log.New(writerFunc(func(p []byte) (int, error) {
		l.Info("%s", strings.TrimRight(string(p), "\n"))
		return len(p), nil
	}), "", 0)
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
