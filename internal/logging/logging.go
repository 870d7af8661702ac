// Package logging owns the process logger. Components tag their entries with a
// component field so log lines read like "[AUTH] ...".
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	Auth       = "AUTH"
	HungerSpot = "HUNGER_SPOT"
	Donation   = "DONATION"
	Volunteer  = "VOLUNTEER"
	Notify     = "NOTIFY"
	Classifier = "CLASSIFIER"
	Database   = "DATABASE"
	HTTP       = "HTTP"
	Jobs       = "JOBS"
)

var Log = logrus.New()

// Configure applies level and format ("text" or "json") to Log.
func Configure(level, format string) error {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	Log.SetLevel(lvl)
	Log.SetOutput(os.Stdout)

	switch strings.ToLower(format) {
	case "json":
		Log.SetFormatter(&logrus.JSONFormatter{})
	default:
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func For(component string) *logrus.Entry {
	return Log.WithField("component", component)
}

// Silence discards output, for tests.
func Silence() {
	Log.SetOutput(io.Discard)
}
