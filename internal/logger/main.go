// Package logger sets up the global zerolog logger: JSON or human readable
// console output, rolling files per level and a prometheus counter of log
// statements.
package logger

import (
	"io"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelWriter sends each event to the writer of its level. A nil writer
// drops the events of that level.
type LevelWriter struct {
	Error io.Writer // error, fatal and panic
	Warn  io.Writer
	Info  io.Writer // info and debug
	Trace io.Writer
}

// Write implements io.Writer for events without a level.
func (lw *LevelWriter) Write(p []byte) (int, error) {
	return lw.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter.
func (lw *LevelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	w := lw.target(l)
	if w == nil {
		return len(p), nil
	}

	return w.Write(p) //nolint:wrapcheck
}

func (lw *LevelWriter) target(l zerolog.Level) io.Writer {
	switch {
	case l == zerolog.Disabled:
		return nil
	case l == zerolog.TraceLevel:
		return lw.Trace
	case l == zerolog.WarnLevel:
		return lw.Warn
	case l > zerolog.WarnLevel && l != zerolog.NoLevel:
		return lw.Error
	default:
		return lw.Info
	}
}

// Init replaces the global logger according to cfg.
func Init(cfg Log) error {
	l, err := New(cfg, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}

	zerolog.ErrorHandler = ErrorHandler
	log.Logger = l

	return nil
}

// New builds a logger writing info and debug to stdout and every other
// level to stderr, plus the rolling files when enabled. Every line carries
// the service name and, when set, the environment.
func New(cfg Log, stdout, stderr io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), errors.Wrapf(err, "loglevel %s is not supported", cfg.LogLevel)
	}

	if cfg.ServiceName == "" {
		return zerolog.Nop(), ErrServiceNameIsEmpty
	}

	if cfg.AppName == "" {
		return zerolog.Nop(), ErrAppNameIsEmpty
	}

	zerolog.SetGlobalLevel(level)

	writers := make([]io.Writer, 0, 2) //nolint:mnd

	if cfg.Console.Enabled {
		writers = append(writers, NewConsoleWriter(cfg, stdout, stderr))
	}

	if cfg.File.Enabled {
		w, err := newRollingFiles(cfg.File)
		if err != nil {
			return zerolog.Nop(), err
		}

		writers = append(writers, w)
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Hook(NewPrometheusHook(cfg.ServiceName)).
		With().
		Timestamp().
		Str("service", cfg.ServiceName)

	if cfg.LogEnv != "" {
		ctx = ctx.Str("env", cfg.LogEnv)
	}

	if cfg.ReportCaller {
		ctx = ctx.Caller()
	}

	// trace level also prints the stack of pkg/errors values
	if level == zerolog.TraceLevel {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack //nolint:reassign
		ctx = ctx.Stack()
	}

	return ctx.Logger(), nil
}

// RollingFile opens a lumberjack file below dir. A rotation without a name
// yields nil.
func RollingFile(dir string, r Rotation) io.Writer {
	if r.Name == "" {
		return nil
	}

	return &lumberjack.Logger{
		Filename:   path.Join(dir, r.Name),
		MaxSize:    r.MaxSize,
		MaxAge:     r.MaxAge,
		MaxBackups: r.MaxBackups,
	}
}

func newRollingFiles(cfg LogFile) (io.Writer, error) {
	if err := os.MkdirAll(cfg.Path, 0o750); err != nil { //nolint:mnd
		return nil, errors.Wrapf(err, "can't create log directory %s", cfg.Path)
	}

	return &LevelWriter{
		Error: RollingFile(cfg.Path, cfg.Error),
		Warn:  RollingFile(cfg.Path, cfg.Warn),
		Info:  RollingFile(cfg.Path, cfg.Info),
		Trace: RollingFile(cfg.Path, cfg.Trace),
	}, nil
}

// NewConsoleWriter writes info and debug to stdout, the rest to stderr.
func NewConsoleWriter(cfg Log, stdout, stderr io.Writer) io.Writer {
	if cfg.Console.UseConsoleWriter {
		stdout = zerolog.ConsoleWriter{Out: stdout, TimeFormat: zerolog.TimeFieldFormat}
		stderr = zerolog.ConsoleWriter{Out: stderr, TimeFormat: zerolog.TimeFieldFormat}
	}

	return &LevelWriter{Error: stderr, Warn: stderr, Info: stdout, Trace: stderr}
}
