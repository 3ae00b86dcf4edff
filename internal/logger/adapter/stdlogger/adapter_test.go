package stdlogger_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"

	"github.com/mompick/mompick-admin/internal/logger/adapter/stdlogger"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer

	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	})

	return &buf
}

func TestLevels(t *testing.T) {
	buf := capture(t)

	l := stdlogger.New()
	l.Infof("%s ready", "db")
	l.Warningf("%d slow queries", 3)
	l.Errorf("failed: %v", "boom")
	l.Debugf("hidden")

	out := buf.String()
	assert.Contains(t, out, `"level":"info","message":"db ready"`)
	assert.Contains(t, out, `"level":"warn","message":"3 slow queries"`)
	assert.Contains(t, out, `"level":"error","message":"failed: boom"`)
	assert.NotContains(t, out, "hidden")
}

func TestPrintfFlattensLines(t *testing.T) {
	buf := capture(t)

	stdlogger.NewWithLevel(zerolog.WarnLevel).Printf("%s\n[%.3fms] %s", "db.go:12", 1.5, "SELECT 1")

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "db.go:12 [1.500ms] SELECT 1")
}

func TestPrintfBelowLevel(t *testing.T) {
	buf := capture(t)

	stdlogger.NewWithLevel(zerolog.DebugLevel).Printf("cron tick")

	assert.Zero(t, buf.Len())
}
