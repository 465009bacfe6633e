package usecase

import (
	"context"
	"time"

	domainPreference "github.com/serenease/notify/domains/preference"
	domainReminder "github.com/serenease/notify/domains/reminder"
	"github.com/serenease/notify/notification/application"
	"github.com/serenease/notify/notification/domain"
	"github.com/serenease/notify/validations"
)

type servicePreference struct {
	prefs     domain.IPreferenceRepository
	resolver  *application.PreferenceResolver
	reminders domainReminder.IReminderUsecase
}

func NewPreferenceService(
	prefs domain.IPreferenceRepository,
	resolver *application.PreferenceResolver,
	reminders domainReminder.IReminderUsecase,
) domainPreference.IPreferenceUsecase {
	return &servicePreference{
		prefs:     prefs,
		resolver:  resolver,
		reminders: reminders,
	}
}

// Get returns the effective preferences for the scope, built-in defaults
// included, so the caller always sees what the engine would actually do.
func (service *servicePreference) Get(ctx context.Context, scope string) (*domain.NotificationPreferences, error) {
	if scope == domain.PreferenceScopeGlobal {
		prefs, err := service.prefs.GetByScope(ctx, scope)
		if err == domain.ErrPreferencesNotFound {
			return application.DefaultPreferences(), nil
		}
		return prefs, err
	}
	return service.resolver.Effective(ctx, scope)
}

func (service *servicePreference) Put(ctx context.Context, request domainPreference.UpsertRequest) (*domain.NotificationPreferences, error) {
	if err := validations.ValidateUpsertPreferences(ctx, request); err != nil {
		return nil, err
	}

	rules := make([]domain.ReminderRule, 0, len(request.Rules))
	for _, r := range request.Rules {
		rules = append(rules, domain.ReminderRule{
			Channel: domain.Channel(r.Channel),
			Offset:  time.Duration(r.OffsetMinutes) * time.Minute,
			Enabled: r.Enabled,
		})
	}

	prefs := &domain.NotificationPreferences{
		Scope:        request.Scope,
		EmailEnabled: request.EmailEnabled,
		SMSEnabled:   request.SMSEnabled,
		Rules:        rules,
		UpdatedAt:    timeNowUTC(),
	}
	if err := service.prefs.Upsert(ctx, prefs); err != nil {
		return nil, err
	}

	if err := service.reminders.PreferencesChanged(ctx, request.Scope); err != nil {
		return nil, err
	}
	return prefs, nil
}

// Delete drops a scope override; affected appointments fall back to the
// next layer (global or defaults) on the reconciliation that follows.
func (service *servicePreference) Delete(ctx context.Context, scope string) error {
	if err := service.prefs.DeleteScope(ctx, scope); err != nil {
		return err
	}
	return service.reminders.PreferencesChanged(ctx, scope)
}
