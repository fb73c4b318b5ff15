package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New returns the process logger. prod gets JSON at info level, everything
// else gets text at debug level.
func New(env string) logrus.FieldLogger {
	return NewWithOutput(env, nil)
}

func NewWithOutput(env string, out io.Writer) logrus.FieldLogger {
	l := logrus.New()
	if out != nil {
		l.Out = out
	}

	if env == "prod" {
		l.Formatter = &logrus.JSONFormatter{}
		l.Level = logrus.InfoLevel
	} else {
		l.Formatter = &logrus.TextFormatter{}
		l.Level = logrus.DebugLevel
	}

	return l.WithField("env", env)
}

// Discard is a logger that drops everything. Used by tests.
func Discard() logrus.FieldLogger {
	return NewWithOutput("test", io.Discard)
}
