package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Dev mode writes human-readable console
// lines, otherwise one JSON object per line.
func New(level string, dev bool) (zerolog.Logger, error) {
	return NewWithWriter(os.Stdout, level, dev)
}

func NewWithWriter(out io.Writer, level string, dev bool) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if dev {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.DateTime,
		}
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("app", "cryptoassist").
		Logger(), nil
}

// ParseLevel accepts zerolog level names plus the WARNING and CRITICAL
// spellings used by Python-style configs.
func ParseLevel(level string) (zerolog.Level, error) {
	name := strings.ToLower(strings.TrimSpace(level))
	switch name {
	case "warning":
		name = zerolog.LevelWarnValue
	case "critical":
		name = zerolog.LevelFatalValue
	}

	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}
