// Package logger is the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger zerolog.Logger
)

func init() {
	SetOutput(DefaultWriter())
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// DefaultWriter sends debug, info and warn lines to stdout and everything
// more severe to stderr, both through console formatting.
func DefaultWriter() io.Writer {
	return zerolog.MultiLevelWriter(
		SpecificLevelWriter{
			Writer: zerolog.ConsoleWriter{
				Out:        os.Stdout,
				TimeFormat: time.RFC3339,
			},
			Levels: []zerolog.Level{
				zerolog.DebugLevel, zerolog.InfoLevel, zerolog.WarnLevel,
			},
		},
		SpecificLevelWriter{
			Writer: zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: time.RFC3339,
			},
			Levels: []zerolog.Level{
				zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel,
			},
		},
	)
}

// SetOutput replaces the log destination for every level.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = zerolog.New(w).With().Timestamp().Logger()
}

// SetLevel parses a level name such as "debug" or "warn". An empty name keeps
// the current level.
func SetLevel(level string) error {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return nil
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(l)
	return nil
}

// Logger returns a copy of the current logger for structured fields and
// sub-loggers.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Info(msg string) {
	l := Logger()
	l.Info().Msg(msg)
}

func Infof(format string, args ...interface{}) {
	l := Logger()
	l.Info().Msgf(format, args...)
}

func Warn(msg string) {
	l := Logger()
	l.Warn().Msg(msg)
}

func Warnf(format string, args ...interface{}) {
	l := Logger()
	l.Warn().Msgf(format, args...)
}

func Error(msg string) {
	l := Logger()
	l.Error().Msg(msg)
}

func Errorf(format string, args ...interface{}) {
	l := Logger()
	l.Error().Msgf(format, args...)
}

func Debug(msg string) {
	l := Logger()
	l.Debug().Msg(msg)
}

func Debugf(format string, args ...interface{}) {
	l := Logger()
	l.Debug().Msgf(format, args...)
}

// SpecificLevelWriter forwards only the listed levels to Writer.
type SpecificLevelWriter struct {
	io.Writer
	Levels []zerolog.Level
}

func (w SpecificLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	for _, l := range w.Levels {
		if l == level {
			return w.Write(p)
		}
	}
	return len(p), nil
}
