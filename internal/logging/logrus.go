// Package logging builds the component-scoped logrus loggers used across agd.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface components depend on.
type Logger interface {
	logrus.FieldLogger
}

// Setter configures the root logger.
type Setter func(*logrus.Logger) error

// New returns a root logger writing text records to out at the given level.
// An unparsable level falls back to warn and is reported on the logger itself.
func New(out io.Writer, level string, setters ...Setter) *logrus.Logger {
	root := logrus.New()
	root.SetOutput(out)
	root.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	_ = Level(root, level)(root)
	for _, setter := range setters {
		// no errors handling for now
		_ = setter(root)
	}
	return root
}

// Component scopes a logger to a named component.
func Component(root logrus.FieldLogger, component string) Logger {
	if root == nil {
		root = Discard()
	}
	return root.WithField("component", component)
}

// Discard returns a logger that drops every record.
func Discard() *logrus.Logger {
	root := logrus.New()
	root.SetOutput(io.Discard)
	return root
}

// Level returns a setter applying lvl; invalid levels fall back to warn.
func Level(root *logrus.Logger, lvl string) Setter {
	l, err := logrus.ParseLevel(lvl)
	if err != nil {
		root.WithError(err).Errorf("unable to parse provided level %q", lvl)
		l = logrus.WarnLevel
	}
	return func(r *logrus.Logger) error {
		r.SetLevel(l)
		return nil
	}
}

// JSON switches the root logger to JSON records.
func JSON() Setter {
	return func(r *logrus.Logger) error {
		r.SetFormatter(&logrus.JSONFormatter{})
		return nil
	}
}
