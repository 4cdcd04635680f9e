package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// NewLogger builds the CLI logger writing to w. Debug loggers also record
// the caller.
func NewLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.Nop(), fmt.Errorf("unknown log level %q", level)
	}

	switch format {
	case LogFormatJSON:
	case LogFormatText, "":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}

	ctx := zerolog.New(w).Level(lvl).With().Timestamp()
	if lvl <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	return ctx.Logger(), nil
}
