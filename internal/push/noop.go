package push

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mompick/mompick-admin/internal/config"
)

// Noop drops every delivery. It is used when no push provider is configured.
type Noop struct{}

// Name implements Transport.
func (Noop) Name() string { return config.PushNone }

// Send implements Transport.
func (Noop) Send(_ context.Context, d Delivery) error {
	log.Debug().Str("platform", d.Platform).Str("title", d.Title).Msg("push disabled, delivery dropped")
	return nil
}

// NewTransport builds the transport of the configured provider.
func NewTransport(ctx context.Context, cfg config.Push) (Transport, error) {
	switch cfg.Provider {
	case config.PushFCM:
		t, err := NewFCM(ctx, cfg.FCM)
		if err != nil {
			return nil, err
		}

		return t, nil
	case config.PushSNS:
		t, err := NewSNS(ctx, cfg.SNS)
		if err != nil {
			return nil, err
		}

		return t, nil
	default:
		return Noop{}, nil
	}
}
