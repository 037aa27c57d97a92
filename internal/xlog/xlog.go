// Package xlog is a small leveled logging sink adapted from the teacher's
// example/main.go (logf/LoggingLevel/parseLogLevel), turned from a
// package-level global into a struct passed explicitly wherever logging
// is needed, per the "no import-time side effects" design note.
package xlog

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// Level selects which messages a Logger emits.
type Level int

const (
	LevelError Level = iota
	LevelInfo
	LevelDebug
)

// ParseLevel parses a level name ("error", "info", "debug"), case
// insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "error":
		return LevelError, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	default:
		return 0, fmt.Errorf("xlog: invalid log level %q", s)
	}
}

const prefixWidth = 9 // fits "[DEBUG] "

// Logger is a leveled sink wrapping a stdlib *log.Logger. The zero value
// has no writer and drops everything; use New to attach a real writer.
type Logger struct {
	level Level
	inner *log.Logger
}

// New returns a Logger at the given level, writing to w with standard
// timestamp flags.
func New(level Level, w io.Writer) *Logger {
	return &Logger{level: level, inner: log.New(w, "", log.LstdFlags)}
}

// Discard returns a Logger that drops everything, useful as a default
// when the caller hasn't wired up a real sink yet.
func Discard() *Logger {
	return New(LevelError, io.Discard)
}

func (l *Logger) logf(level Level, prefix string, format string, args ...any) {
	if l == nil || l.inner == nil || level > l.level {
		return
	}
	padded := fmt.Sprintf("%-*s", prefixWidth, prefix)
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	l.inner.Printf("%s%s", padded, msg)
}

// Errorf logs at LevelError.
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, "[ERROR]", format, args...) }

// Infof logs at LevelInfo.
func (l *Logger) Infof(format string, args ...any) { l.logf(LevelInfo, "[INFO] ", format, args...) }

// Debugf logs at LevelDebug.
func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, "[DEBUG]", format, args...) }
