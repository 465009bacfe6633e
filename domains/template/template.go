package template

import (
	"context"

	"github.com/serenease/notify/notification/domain"
)

type ITemplateUsecase interface {
	Create(ctx context.Context, request CreateRequest) (*domain.MessageTemplate, error)
	Update(ctx context.Context, request UpdateRequest) (*domain.MessageTemplate, error)
	Delete(ctx context.Context, templateID string) error
	Get(ctx context.Context, templateID string) (*domain.MessageTemplate, error)
	List(ctx context.Context) ([]*domain.MessageTemplate, error)
	Preview(ctx context.Context, request PreviewRequest) (*PreviewResult, error)
}

type CreateRequest struct {
	Name    string `json:"name" form:"name"`
	Channel string `json:"channel" form:"channel"` // email or sms
	Subject string `json:"subject,omitempty" form:"subject"`
	Body    string `json:"body" form:"body"`
}

type UpdateRequest struct {
	ID      string `json:"id" form:"id"`
	Name    string `json:"name" form:"name"`
	Channel string `json:"channel" form:"channel"`
	Subject string `json:"subject,omitempty" form:"subject"`
	Body    string `json:"body" form:"body"`
}

// PreviewRequest renders a template against caller-provided bindings without
// sending anything.
type PreviewRequest struct {
	TemplateID string            `json:"template_id" form:"template_id"`
	Bindings   map[string]string `json:"bindings"`
}

type PreviewResult struct {
	Subject    string   `json:"subject,omitempty"`
	Body       string   `json:"body"`
	Unresolved []string `json:"unresolved,omitempty"` // tokens the bindings did not cover
}
