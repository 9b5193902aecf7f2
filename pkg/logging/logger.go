// Package logging is the small logger contract momentum components accept.
package logging

import (
	"io"
	"log"
	"strings"
)

// Logger receives diagnostic lines.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Nop discards everything.
var Nop Logger = nopLogger{}

// OrNop returns l, or Nop when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop
	}
	return l
}

// New writes timestamped lines prefixed with "momentum: " to w.
func New(w io.Writer) Logger {
	return &stdLogger{l: log.New(w, "momentum: ", log.LstdFlags)}
}

type stdLogger struct {
	l *log.Logger
}

func (s *stdLogger) Printf(format string, args ...any) {
	s.l.Printf(strings.TrimRight(format, "\n"), args...)
}
