// Package log provides the logging interface used throughout the
// emulator, along with a logrus backed implementation.
package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the interface components log through. Components never
// construct a logger themselves, one is injected by the owner of the
// component (see gameboy.WithLogger).
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// New returns a Logger writing to stdout at the info level.
func New() Logger {
	return NewWithLevel(os.Stdout, logrus.InfoLevel)
}

// NewWithLevel returns a Logger writing to w, discarding any
// entries below level.
func NewWithLevel(w io.Writer, level logrus.Level) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
		DisableQuote:     true,
	}

	return l
}
