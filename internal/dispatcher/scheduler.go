package dispatcher

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mompick/mompick-admin/internal/logger/adapter/stdlogger"
)

// Runner runs one dispatch cycle.
type Runner interface {
	Run(ctx context.Context) (Report, error)
}

// Scheduler runs dispatch cycles on a cron spec. A cycle still running when
// the next one is due makes the next one skip.
type Scheduler struct {
	cron   *cron.Cron
	cancel context.CancelFunc
}

// NewScheduler registers r on spec, e.g. "@every 1m" or "*/5 * * * *".
func NewScheduler(ctx context.Context, r Runner, spec string) (*Scheduler, error) {
	cl := cron.PrintfLogger(stdlogger.NewWithLevel(zerolog.DebugLevel))
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	ctx, cancel := context.WithCancel(ctx)

	_, err := c.AddFunc(spec, func() {
		if _, err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("dispatch cycle failed")
		}
	})
	if err != nil {
		cancel()
		return nil, errors.Wrapf(err, "invalid dispatcher schedule %q", spec)
	}

	return &Scheduler{cron: c, cancel: cancel}, nil
}

// Start begins running cycles in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels a running cycle and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}
