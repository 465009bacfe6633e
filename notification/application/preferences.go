package application

import (
	"context"
	"time"

	"github.com/serenease/notify/notification/domain"
)

// PreferenceResolver answers "which rules apply to this client right now".
// A per-client preference row fully overrides the global one; when neither
// exists the engine falls back to a conservative built-in default.
type PreferenceResolver struct {
	prefs domain.IPreferenceRepository
}

func NewPreferenceResolver(prefs domain.IPreferenceRepository) *PreferenceResolver {
	return &PreferenceResolver{prefs: prefs}
}

// DefaultPreferences is used until the practice configures anything.
func DefaultPreferences() *domain.NotificationPreferences {
	return &domain.NotificationPreferences{
		Scope:        domain.PreferenceScopeGlobal,
		EmailEnabled: true,
		SMSEnabled:   true,
		Rules: []domain.ReminderRule{
			{Channel: domain.ChannelEmail, Offset: 24 * time.Hour, Enabled: true},
			{Channel: domain.ChannelSMS, Offset: time.Hour, Enabled: true},
		},
	}
}

// Effective returns the preference set governing clientID.
func (r *PreferenceResolver) Effective(ctx context.Context, clientID string) (*domain.NotificationPreferences, error) {
	if clientID != "" {
		prefs, err := r.prefs.GetByScope(ctx, clientID)
		if err == nil {
			return prefs, nil
		}
		if err != domain.ErrPreferencesNotFound {
			return nil, err
		}
	}

	prefs, err := r.prefs.GetByScope(ctx, domain.PreferenceScopeGlobal)
	if err == domain.ErrPreferencesNotFound {
		return DefaultPreferences(), nil
	}
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

// EffectiveRules returns the enabled rules for clientID with channel opt-outs
// applied. A disabled channel silences its rules entirely.
func (r *PreferenceResolver) EffectiveRules(ctx context.Context, clientID string) ([]domain.ReminderRule, error) {
	prefs, err := r.Effective(ctx, clientID)
	if err != nil {
		return nil, err
	}

	var rules []domain.ReminderRule
	for _, rule := range prefs.Rules {
		if rule.Enabled && prefs.ChannelEnabled(rule.Channel) {
			rules = append(rules, rule)
		}
	}
	return rules, nil
}
