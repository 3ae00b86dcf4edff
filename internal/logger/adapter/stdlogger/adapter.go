// Package stdlogger adapts the global zerolog logger to printf style
// interfaces, e.g. the gorm logger writer.
package stdlogger

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger writes printf style messages through the global zerolog logger.
type Logger struct {
	// level used by Printf
	level zerolog.Level
}

// New returns a Logger whose Printf logs at info level.
func New() *Logger {
	return &Logger{level: zerolog.InfoLevel}
}

// NewWithLevel returns a Logger whose Printf logs at the given level.
func NewWithLevel(level zerolog.Level) *Logger {
	return &Logger{level: level}
}

// Printf implements the gorm logger.Writer interface.
func (l *Logger) Printf(format string, args ...interface{}) {
	// gorm prefixes its messages with the caller on its own line
	log.WithLevel(l.level).Msgf(strings.ReplaceAll(format, "\n", " "), args...)
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...interface{}) {
	log.Debug().Msgf(format, args...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...interface{}) {
	log.Info().Msgf(format, args...)
}

// Warningf logs at warn level.
func (l *Logger) Warningf(format string, args ...interface{}) {
	log.Warn().Msgf(format, args...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...interface{}) {
	log.Error().Msgf(format, args...)
}
