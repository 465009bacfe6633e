package channel

import (
	"context"

	"github.com/serenease/notify/notification/domain"
	"github.com/sirupsen/logrus"
)

// NoopAdapter accepts everything and sends nothing. Stands in for channels
// that are not configured so deliveries still complete in development.
type NoopAdapter struct {
	channel domain.Channel
}

func NewNoopAdapter(channel domain.Channel) *NoopAdapter {
	return &NoopAdapter{channel: channel}
}

func (a *NoopAdapter) Channel() domain.Channel { return a.channel }

func (a *NoopAdapter) Send(ctx context.Context, msg domain.Outbound) error {
	logrus.Infof("[CHANNEL] Noop %s send to %s: %q", a.channel, msg.Contact, msg.Subject)
	return nil
}
