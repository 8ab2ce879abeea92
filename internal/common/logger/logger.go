package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the structured logger handed to every component.
type Logger = *logrus.Entry

// New creates a service-tagged logger. Level comes from LOG_LEVEL (default info);
// output is JSON so the log pipeline can index fields.
func New(service string) Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	return l.WithField("service", service)
}
