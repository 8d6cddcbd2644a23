package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// newLogger returns a console logger tagged with the run id.
func newLogger(w io.Writer, level, runID string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
	}
	// Trace events are dropped below the global level.
	if lvl < zerolog.GlobalLevel() {
		zerolog.SetGlobalLevel(lvl)
	}
	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !useColor(w) || color.NoColor,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("run_id", runID).
		Logger(), nil
}
