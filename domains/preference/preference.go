package preference

import (
	"context"

	"github.com/serenease/notify/notification/domain"
)

// IPreferenceUsecase manages reminder rules and channel opt-ins per scope
// ("global" or a client ID). Saving a scope reconciles every upcoming
// appointment it governs.
type IPreferenceUsecase interface {
	Get(ctx context.Context, scope string) (*domain.NotificationPreferences, error)
	Put(ctx context.Context, request UpsertRequest) (*domain.NotificationPreferences, error)
	Delete(ctx context.Context, scope string) error
}

type UpsertRequest struct {
	Scope        string        `json:"scope" form:"scope"`
	EmailEnabled bool          `json:"email_enabled" form:"email_enabled"`
	SMSEnabled   bool          `json:"sms_enabled" form:"sms_enabled"`
	Rules        []RuleRequest `json:"rules"`
}

// RuleRequest is the wire form of one reminder rule. Offsets travel as
// minutes before the appointment start.
type RuleRequest struct {
	Channel       string `json:"channel" form:"channel"`
	OffsetMinutes int    `json:"offset_minutes" form:"offset_minutes"`
	Enabled       bool   `json:"enabled" form:"enabled"`
}
