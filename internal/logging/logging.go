package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options select the level and output format of the application logger.
type Options struct {
	Level  string
	Format string
	Out    io.Writer
}

// New builds the application logger. Format "console" writes human-readable
// lines; anything else writes JSON.
func New(opts Options) (zerolog.Logger, error) {
	zerolog.TimestampFieldName = "timestamp"
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}
	w := opts.Out
	if w == nil {
		w = os.Stderr
	}
	if opts.Format == "console" {
		cw := zerolog.NewConsoleWriter()
		cw.TimeFormat = time.DateTime
		cw.Out = w
		w = cw
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger(), nil
}

// Discard returns a logger that drops everything; the TUI uses it so log
// lines never corrupt the alternate screen.
func Discard() zerolog.Logger {
	return zerolog.Nop()
}
