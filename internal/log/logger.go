// Package log holds the process-wide zerolog logger.
package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var (
	logger     = zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()
	loggerLock sync.RWMutex
)

// Init replaces the global logger. Terminals get the console writer, anything
// else gets JSON lines.
func Init(w io.Writer, level string) {
	output := w
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		output = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	l := zerolog.New(output).Level(ParseLevel(level)).With().Timestamp().Logger()

	loggerLock.Lock()
	logger = l
	loggerLock.Unlock()
}

// SetLevel changes the level of the global logger at runtime.
func SetLevel(level string) {
	loggerLock.Lock()
	logger = logger.Level(ParseLevel(level))
	loggerLock.Unlock()
}

// ParseLevel converts a level name to a zerolog.Level. Unknown names are info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger returns a copy of the global logger for components that keep their own.
func Logger() zerolog.Logger {
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	return logger
}

func Debug() *zerolog.Event {
	l := Logger()
	return l.Debug()
}

func Info() *zerolog.Event {
	l := Logger()
	return l.Info()
}

func Warn() *zerolog.Event {
	l := Logger()
	return l.Warn()
}

func Error() *zerolog.Event {
	l := Logger()
	return l.Error()
}
