// Package dispatcher delivers due scheduled notifications to every active
// user, in-app and by push.
package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/controller/notification"
	"github.com/mompick/mompick-admin/internal/db/controller/notificationsetting"
	"github.com/mompick/mompick-admin/internal/db/controller/profile"
	"github.com/mompick/mompick-admin/internal/db/controller/scheduled"
	"github.com/mompick/mompick-admin/internal/db/models"
	"github.com/mompick/mompick-admin/internal/notify"
)

// Row outcomes.
const (
	OutcomeSent      = "sent"
	OutcomeDuplicate = "duplicate"
	OutcomeReverted  = "reverted"
	OutcomeSkipped   = "skipped"
)

// warnAttempts is the claim count from which a row is reported as stuck.
const warnAttempts = 5

var (
	cycles = promauto.NewCounter(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "dispatcher_cycles_total",
		Help: "Number of scheduled notification dispatch cycles.",
	})
	outcomes = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "dispatcher_notifications_total",
		Help: "Number of scheduled notifications handled, by outcome.",
	}, []string{"outcome"})
)

// RowReport is the result of one scheduled notification.
type RowReport struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Outcome       string         `json:"outcome"`
	Notifications int            `json:"notifications"`
	PushTargets   int            `json:"pushTargets"`
	Push          notify.Summary `json:"push"`
	Error         string         `json:"error,omitempty"`
}

// Report is the result of one dispatch cycle.
type Report struct {
	Total      int         `json:"total"`
	Processed  int         `json:"processed"`
	Failed     int         `json:"failed"`
	Duplicates int         `json:"duplicates"`
	Skipped    int         `json:"skipped"`
	Rows       []RowReport `json:"rows"`
}

// Dispatcher runs dispatch cycles.
type Dispatcher struct {
	db       *gorm.DB
	notifier *notify.Notifier
	window   time.Duration
	now      func() time.Time
}

// New creates a dispatcher.
func New(db *gorm.DB, notifier *notify.Notifier, cfg config.Dispatcher) *Dispatcher {
	window := cfg.DuplicateWindow
	if window <= 0 {
		window = config.DefaultDuplicateWindow
	}

	return &Dispatcher{
		db:       db,
		notifier: notifier,
		window:   window,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run handles every pending notification whose time has come, earliest
// first. Rows claimed by a concurrent run are skipped. A row that fails after
// being claimed goes back to pending and is retried by the next run.
func (d *Dispatcher) Run(ctx context.Context) (Report, error) {
	cycles.Inc()

	due, err := scheduled.Due(d.db, d.now())
	if err != nil {
		return Report{}, errors.Wrap(err, "select due scheduled notifications")
	}

	report := Report{Total: len(due), Rows: make([]RowReport, 0, len(due))}

	for _, row := range due {
		if ctx.Err() != nil {
			break
		}

		r := d.process(ctx, row)
		outcomes.WithLabelValues(r.Outcome).Inc()

		switch r.Outcome {
		case OutcomeSent:
			report.Processed++
		case OutcomeDuplicate:
			report.Processed++
			report.Duplicates++
		case OutcomeReverted:
			report.Failed++
		case OutcomeSkipped:
			report.Skipped++
		}

		report.Rows = append(report.Rows, r)
	}

	if report.Total > 0 {
		log.Info().Int("total", report.Total).Int("processed", report.Processed).
			Int("failed", report.Failed).Int("duplicates", report.Duplicates).
			Msg("dispatch cycle finished")
	}

	return report, ctx.Err()
}

// process claims and delivers one row. Once claimed the row always leaves
// processing: sent on success, pending otherwise.
func (d *Dispatcher) process(ctx context.Context, row models.ScheduledNotification) (r RowReport) {
	r = RowReport{ID: row.ID, Title: row.Title}
	logger := log.With().Str("scheduled", row.ID).Logger()

	won, err := scheduled.Claim(d.db, row.ID)
	if err != nil {
		logger.Error().Err(err).Msg("claiming scheduled notification failed")
		r.Outcome = OutcomeSkipped
		r.Error = err.Error()

		return r
	}

	if !won {
		logger.Debug().Msg("scheduled notification claimed elsewhere")
		r.Outcome = OutcomeSkipped

		return r
	}

	if row.Attempts+1 >= warnAttempts {
		logger.Warn().Int("attempts", row.Attempts+1).Msg("scheduled notification keeps failing")
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}

		if err == nil {
			return
		}

		logger.Error().Err(err).Msg("delivering scheduled notification failed, back to pending")
		r.Outcome = OutcomeReverted
		r.Error = err.Error()

		if rerr := scheduled.Release(d.db, row.ID); rerr != nil {
			logger.Error().Err(rerr).Msg("reverting scheduled notification failed")
		}
	}()

	r.Outcome, err = d.deliver(ctx, row, &r)

	return r
}

func (d *Dispatcher) deliver(ctx context.Context, row models.ScheduledNotification, r *RowReport) (string, error) {
	dup, err := notification.HasDuplicate(d.db, row.Title, row.Body, row.ScheduledAt, d.window)
	if err != nil {
		return "", errors.Wrap(err, "duplicate check")
	}

	if dup {
		if err = d.markSent(row.ID); err != nil {
			return "", err
		}

		return OutcomeDuplicate, nil
	}

	recipients, err := profile.ActiveIDs(d.db)
	if err != nil {
		return "", errors.Wrap(err, "load recipients")
	}

	rows, err := notification.FanOut(d.db, models.NotificationSystem, recipients, models.NotificationPayload{
		Title:                   row.Title,
		Content:                 row.Body,
		Message:                 row.Body,
		ScheduledNotificationID: row.ID,
	})
	if err != nil {
		return "", errors.Wrap(err, "fan out")
	}

	r.Notifications = len(rows)

	build := notify.NoticeMessage(row.Title, row.Body, notify.RowIDs(rows),
		map[string]string{"scheduled_notification_id": row.ID})

	r.Push, r.PushTargets, err = d.notifier.ToOptedIn(ctx, recipients, notificationsetting.Notice, build)
	if err != nil {
		return "", errors.Wrap(err, "push")
	}

	if err = d.markSent(row.ID); err != nil {
		return "", err
	}

	return OutcomeSent, nil
}

func (d *Dispatcher) markSent(id string) error {
	ok, err := scheduled.MarkSent(d.db, id)
	if err != nil {
		return errors.Wrap(err, "mark sent")
	}

	if !ok {
		return errors.New("scheduled notification left processing while being delivered")
	}

	return nil
}
