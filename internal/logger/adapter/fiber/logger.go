// Package fiber is the zerolog access log middleware of the admin server.
package fiber

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mompick/mompick-admin/internal/logger"
)

var (
	duration     *prometheus.HistogramVec //nolint:gochecknoglobals
	durationOnce sync.Once                //nolint:gochecknoglobals
)

// Config of the access log middleware.
type Config struct {
	// Next skips the middleware when it returns true.
	Next func(c *fiber.Ctx) bool

	Config logger.Log

	// CheckAliveURI is not logged when Config.DisableCheckAlive is set.
	CheckAliveURI string

	// SkipPrefixes are served without an access line, e.g. /static.
	SkipPrefixes []string

	// User names the caller of a request, empty for anonymous ones.
	User func(c *fiber.Ctx) string

	// Output replaces the configured writers, used by tests.
	Output io.Writer
}

func observer() *prometheus.HistogramVec {
	durationOnce.Do(func() {
		duration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of http requests by method, route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"})
	})

	return duration
}

func writers(cfg Config) []io.Writer {
	if cfg.Output != nil {
		return []io.Writer{cfg.Output}
	}

	var out []io.Writer

	if cfg.Config.File.Enabled {
		if err := os.MkdirAll(cfg.Config.File.Path, 0o750); err != nil { //nolint:mnd
			log.Error().Err(err).Str("path", cfg.Config.File.Path).Msg("can't create access log directory")
		} else if w := logger.RollingFile(cfg.Config.File.Path, cfg.Config.File.Access); w != nil {
			out = append(out, w)
		}
	}

	if cfg.Config.Console.Enabled && cfg.Config.EnableAccessLogToConsole {
		if cfg.Config.Console.UseConsoleWriter {
			out = append(out, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: zerolog.TimeFieldFormat})
		} else {
			out = append(out, os.Stdout)
		}
	}

	return out
}

func levelOf(status int) zerolog.Level {
	switch {
	case status >= fiber.StatusInternalServerError:
		return zerolog.ErrorLevel
	case status >= fiber.StatusBadRequest:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// New returns the access log middleware. Errors of the chain are handed to
// the app's error handler first so the line carries the final status.
func New(cfg Config) fiber.Handler {
	hist := observer()

	access := zerolog.New(zerolog.MultiLevelWriter(writers(cfg)...)).
		With().
		Timestamp().
		Str("type", "access").
		Logger()

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		start := time.Now()

		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError) //nolint:errcheck
			}
		}

		elapsed := time.Since(start)
		status := c.Response().StatusCode()

		route := c.Route().Path
		hist.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Observe(elapsed.Seconds())

		p := c.Path()
		if cfg.Config.DisableCheckAlive && p == cfg.CheckAliveURI {
			return nil
		}

		for _, prefix := range cfg.SkipPrefixes {
			if strings.HasPrefix(p, prefix) {
				return nil
			}
		}

		// the raw path, fasthttp normalises double slashes
		if q := c.Request().URI().QueryString(); len(q) > 0 {
			p += "?" + string(q)
		}

		ev := access.WithLevel(levelOf(status)).
			Str("ip", c.IP()).
			Str("method", c.Method()).
			Str("uri", p).
			Str("route", route).
			Int("status", status).
			Float64("latency_ms", float64(elapsed.Microseconds())/1000). //nolint:mnd
			Str("user_agent", c.Get(fiber.HeaderUserAgent))

		if fwd := c.Get(fiber.HeaderXForwardedFor); fwd != "" {
			ev = ev.Str("forwarded_for", fwd)
		}

		if cfg.User != nil {
			if u := cfg.User(c); u != "" {
				ev = ev.Str("user", u)
			}
		}

		if chainErr != nil {
			ev = ev.Err(chainErr)
		}

		ev.Send()

		return nil
	}
}
