package channel

import (
	"github.com/serenease/notify/core/config"
	"github.com/serenease/notify/notification/application"
	"github.com/serenease/notify/notification/domain"
	"github.com/sirupsen/logrus"
)

// BuildRegistry wires one adapter per channel from configuration. A channel
// with no usable configuration falls back to the noop adapter so the engine
// keeps draining its queue instead of failing every delivery.
func BuildRegistry(cfg config.ChannelsConfig) *application.AdapterRegistry {
	registry := application.NewAdapterRegistry()

	if email, err := NewSMTPAdapter(cfg.SMTP); err == nil {
		registry.Register(email)
	} else {
		logrus.WithError(err).Warn("[CHANNEL] Email falls back to noop adapter")
		registry.Register(NewNoopAdapter(domain.ChannelEmail))
	}

	if sms, err := NewSMSAdapter(cfg.SMS); err == nil {
		registry.Register(sms)
	} else {
		logrus.WithError(err).Warn("[CHANNEL] SMS falls back to noop adapter")
		registry.Register(NewNoopAdapter(domain.ChannelSMS))
	}

	return registry
}
