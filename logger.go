package main

import (
	"os"

	"github.com/rs/zerolog"
)

var logLevels = []zerolog.Level{
	zerolog.ErrorLevel,
	zerolog.WarnLevel,
	zerolog.InfoLevel,
	zerolog.DebugLevel,
	zerolog.TraceLevel,
}

func newLogger(configLevel int, debug bool) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := logLevels[0]
	if configLevel >= 0 && configLevel < len(logLevels) {
		level = logLevels[configLevel]
	}

	if debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
}
