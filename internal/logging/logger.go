package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

type Fields map[string]interface{}

var log = logrus.New()

func init() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})
	if os.Getenv("ARENA_LOG_DEBUG") != "" {
		log.SetLevel(logrus.DebugLevel)
	}
}

func entry(fields Fields) *logrus.Entry {
	if fields == nil {
		return logrus.NewEntry(log)
	}
	return log.WithFields(logrus.Fields(fields))
}

// Debug logs a debug message with optional fields.
func Debug(msg string, fields Fields) {
	entry(fields).Debug(msg)
}

// Info logs an informational message with optional fields.
func Info(msg string, fields Fields) {
	entry(fields).Info(msg)
}

// Warn logs a warning with optional fields.
func Warn(msg string, fields Fields) {
	entry(fields).Warn(msg)
}

// Error logs an error message and includes the error text in the fields.
func Error(msg string, err error, fields Fields) {
	if err != nil {
		entry(fields).WithError(err).Error(msg)
		return
	}
	entry(fields).Error(msg)
}

// Fatal logs a fatal error and exits the process.
func Fatal(msg string, err error, fields Fields) {
	if err != nil {
		entry(fields).WithError(err).Fatal(msg)
		return
	}
	entry(fields).Fatal(msg)
}
