package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	domainAppointment "github.com/serenease/notify/domains/appointment"
	domainCampaign "github.com/serenease/notify/domains/campaign"
	domainClient "github.com/serenease/notify/domains/client"
	domainPreference "github.com/serenease/notify/domains/preference"
	domainReminder "github.com/serenease/notify/domains/reminder"
	domainTemplate "github.com/serenease/notify/domains/template"
	pkgError "github.com/serenease/notify/pkg/error"
)

var channelValues = []interface{}{"email", "sms"}

var audienceKinds = []interface{}{"all", "last_visit", "never_visited", "birthday"}

func ValidateCreateAppointment(ctx context.Context, request domainAppointment.CreateRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ClientID, validation.Required),
		validation.Field(&request.StartAt, validation.Required),
		validation.Field(&request.EndAt, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	if !request.EndAt.After(request.StartAt) {
		return pkgError.ValidationError("end_at must be after start_at")
	}
	return nil
}

func ValidateRescheduleAppointment(ctx context.Context, request domainAppointment.RescheduleRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ID, validation.Required),
		validation.Field(&request.StartAt, validation.Required),
		validation.Field(&request.EndAt, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	if !request.EndAt.After(request.StartAt) {
		return pkgError.ValidationError("end_at must be after start_at")
	}
	return nil
}

func ValidateCreateClient(ctx context.Context, request domainClient.CreateRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.DisplayName, validation.Required),
		validation.Field(&request.Email, is.Email),
		validation.Field(&request.BirthMonth, validation.Min(0), validation.Max(12)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

func ValidateUpdateClient(ctx context.Context, request domainClient.UpdateRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ID, validation.Required),
		validation.Field(&request.DisplayName, validation.Required),
		validation.Field(&request.Email, is.Email),
		validation.Field(&request.BirthMonth, validation.Min(0), validation.Max(12)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

func ValidateCreateTemplate(ctx context.Context, request domainTemplate.CreateRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Name, validation.Required),
		validation.Field(&request.Channel, validation.Required, validation.In(channelValues...)),
		validation.Field(&request.Body, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

func ValidateUpdateTemplate(ctx context.Context, request domainTemplate.UpdateRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ID, validation.Required),
		validation.Field(&request.Name, validation.Required),
		validation.Field(&request.Channel, validation.Required, validation.In(channelValues...)),
		validation.Field(&request.Body, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

func ValidateCreateCampaign(ctx context.Context, request domainCampaign.CreateRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Name, validation.Required),
		validation.Field(&request.TemplateID, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	if err := validateAudience(ctx, request.Audience); err != nil {
		return err
	}
	return nil
}

func validateAudience(ctx context.Context, request domainCampaign.AudienceRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Kind, validation.Required, validation.In(audienceKinds...)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	switch request.Kind {
	case "last_visit":
		if request.Days <= 0 {
			return pkgError.ValidationError("days must be positive for a last_visit audience")
		}
	case "birthday":
		if request.Month < 1 || request.Month > 12 {
			return pkgError.ValidationError("month must be 1-12 for a birthday audience")
		}
	}
	return nil
}

func ValidateUpsertPreferences(ctx context.Context, request domainPreference.UpsertRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Scope, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	for _, rule := range request.Rules {
		if rule.Channel != "email" && rule.Channel != "sms" {
			return pkgError.ValidationError("rule channel must be email or sms")
		}
		if rule.OffsetMinutes < 0 {
			return pkgError.ValidationError("rule offset must not be negative")
		}
	}
	return nil
}

func ValidateReceipt(ctx context.Context, request domainReminder.ReceiptRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.DeliveryID, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}
