// Package logger builds the application's structured loggers.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a console logger for the server and CLI entry points.
func New() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Logger()
}
