package usecase

import (
	"context"

	"github.com/google/uuid"
	domainTemplate "github.com/serenease/notify/domains/template"
	"github.com/serenease/notify/notification/domain"
	"github.com/serenease/notify/pkg/render"
	"github.com/serenease/notify/validations"
)

type serviceTemplate struct {
	templates domain.ITemplateRepository
}

func NewTemplateService(templates domain.ITemplateRepository) domainTemplate.ITemplateUsecase {
	return &serviceTemplate{templates: templates}
}

func (service *serviceTemplate) Create(ctx context.Context, request domainTemplate.CreateRequest) (*domain.MessageTemplate, error) {
	if err := validations.ValidateCreateTemplate(ctx, request); err != nil {
		return nil, err
	}

	tpl := &domain.MessageTemplate{
		ID:      uuid.NewString(),
		Name:    request.Name,
		Channel: domain.Channel(request.Channel),
		Subject: request.Subject,
		Body:    request.Body,
	}
	if err := service.templates.Create(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (service *serviceTemplate) Update(ctx context.Context, request domainTemplate.UpdateRequest) (*domain.MessageTemplate, error) {
	if err := validations.ValidateUpdateTemplate(ctx, request); err != nil {
		return nil, err
	}

	tpl, err := service.templates.GetByID(ctx, request.ID)
	if err != nil {
		return nil, err
	}

	tpl.Name = request.Name
	tpl.Channel = domain.Channel(request.Channel)
	tpl.Subject = request.Subject
	tpl.Body = request.Body
	if err := service.templates.Update(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (service *serviceTemplate) Delete(ctx context.Context, templateID string) error {
	return service.templates.Delete(ctx, templateID)
}

func (service *serviceTemplate) Get(ctx context.Context, templateID string) (*domain.MessageTemplate, error) {
	return service.templates.GetByID(ctx, templateID)
}

func (service *serviceTemplate) List(ctx context.Context) ([]*domain.MessageTemplate, error) {
	return service.templates.List(ctx)
}

// Preview renders against caller bindings; unknown tokens stay literal and
// are reported back so the author sees what a real send would leave behind.
func (service *serviceTemplate) Preview(ctx context.Context, request domainTemplate.PreviewRequest) (*domainTemplate.PreviewResult, error) {
	tpl, err := service.templates.GetByID(ctx, request.TemplateID)
	if err != nil {
		return nil, err
	}

	subject := render.Render(tpl.Subject, request.Bindings)
	body := render.Render(tpl.Body, request.Bindings)

	unresolved := render.UnresolvedTokens(subject + " " + body)
	return &domainTemplate.PreviewResult{
		Subject:    subject,
		Body:       body,
		Unresolved: unresolved,
	}, nil
}
