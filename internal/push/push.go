// Package push delivers push notifications to the registered devices of app
// users.
package push

import (
	"context"
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/controller/fcmtoken"
)

// Length limits applied before sending.
const (
	MaxTitle = 64
	MaxBody  = 240
)

// Android notification channels.
const (
	ChannelDefault = "mompick_notifications"
	ChannelPost    = "mompick_post"
	ChannelComment = "mompick_comment"
	ChannelReply   = "mompick_reply"
	ChannelReview  = "mompick_review"
	ChannelNotice  = "mompick_notice"
)

// ErrInvalidToken is returned by a transport when the device token is no
// longer registered. The token is removed afterwards.
var ErrInvalidToken = errors.New("device token is not registered")

var deliveries = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "push_deliveries_total",
		Help: "Number of push deliveries per provider and outcome.",
	},
	[]string{"provider", "outcome"},
)

// Message is a push notification for one user.
type Message struct {
	UserID string
	Title  string
	Body   string
	Data   map[string]string
}

// Delivery is a push notification for one device.
type Delivery struct {
	Token    string
	Platform string
	Title    string
	Body     string
	Channel  string
	Data     map[string]string
}

// Transport sends a delivery through a push provider.
type Transport interface {
	Name() string
	Send(ctx context.Context, d Delivery) error
}

// Result summarizes the deliveries of one message.
type Result struct {
	Skipped bool     `json:"skipped"`
	Sent    int      `json:"sent"`
	Failed  int      `json:"failed"`
	Removed int      `json:"removed"`
	Errors  []string `json:"errors,omitempty"`
}

// OK reports whether at least one device received the message.
func (r Result) OK() bool {
	return r.Sent > 0
}

// Service sends messages to every device of a user.
type Service struct {
	db        *gorm.DB
	transport Transport
}

// NewService creates the push service.
func NewService(db *gorm.DB, transport Transport) *Service {
	return &Service{db: db, transport: transport}
}

// Truncate shortens s to limit runes, ending with "..." when cut.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}

	return string(r[:limit-3]) + "..."
}

// Channel returns the Android channel for a notification type.
func Channel(kind string) string {
	switch kind {
	case "like":
		return ChannelPost
	case "comment":
		return ChannelComment
	case "reply":
		return ChannelReply
	case "review_like":
		return ChannelReview
	case "notice":
		return ChannelNotice
	default:
		return ChannelDefault
	}
}

// SendToUser sends m to every registered device of the user. A user without
// devices is skipped. Tokens rejected as unregistered are deleted.
func (s *Service) SendToUser(ctx context.Context, m Message) (Result, error) {
	tokens, err := fcmtoken.ForUser(s.db, m.UserID)
	if err != nil {
		return Result{}, err
	}

	if len(tokens) == 0 {
		deliveries.WithLabelValues(s.transport.Name(), "skipped").Inc()
		return Result{Skipped: true}, nil
	}

	title := Truncate(m.Title, MaxTitle)
	body := Truncate(m.Body, MaxBody)
	channel := Channel(m.Data["type"])

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		res     Result
		invalid []string
	)

	for _, t := range tokens {
		wg.Add(1)

		go func() {
			defer wg.Done()

			err := s.transport.Send(ctx, Delivery{
				Token:    t.Token,
				Platform: t.Platform,
				Title:    title,
				Body:     body,
				Channel:  channel,
				Data:     m.Data,
			})

			mu.Lock()
			defer mu.Unlock()

			if err == nil {
				res.Sent++
				deliveries.WithLabelValues(s.transport.Name(), "sent").Inc()

				return
			}

			res.Failed++
			res.Errors = append(res.Errors, err.Error())
			deliveries.WithLabelValues(s.transport.Name(), "failed").Inc()

			if errors.Is(err, ErrInvalidToken) {
				invalid = append(invalid, t.Token)
			}
		}()
	}

	wg.Wait()

	if len(invalid) > 0 {
		n, err := fcmtoken.Delete(s.db, invalid...)
		if err != nil {
			log.Error().Err(err).Str("user", m.UserID).Msg("removing unregistered push tokens failed")
		}

		res.Removed = int(n)
	}

	if res.Failed > 0 {
		log.Warn().Str("user", m.UserID).Int("sent", res.Sent).Int("failed", res.Failed).
			Strs("errors", res.Errors).Msg("push delivery partially failed")
	}

	return res, nil
}
