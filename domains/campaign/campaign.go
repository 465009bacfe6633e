package campaign

import (
	"context"
	"time"

	"github.com/serenease/notify/notification/application"
	"github.com/serenease/notify/notification/domain"
)

type ICampaignUsecase interface {
	Create(ctx context.Context, request CreateRequest) (*domain.Campaign, error)
	Plan(ctx context.Context, campaignID string) (*application.PlanResult, error)
	Cancel(ctx context.Context, campaignID string) error
	Get(ctx context.Context, campaignID string) (*domain.Campaign, error)
	List(ctx context.Context) ([]*domain.Campaign, error)
	History(ctx context.Context, campaignID string) ([]*domain.ScheduledDelivery, error)
}

type CreateRequest struct {
	Name        string          `json:"name" form:"name"`
	TemplateID  string          `json:"template_id" form:"template_id"`
	Audience    AudienceRequest `json:"audience"`
	ScheduledAt *time.Time      `json:"scheduled_at,omitempty"`
}

// AudienceRequest is the wire form of an audience filter. Custom predicates
// are in-process only and cannot arrive over the API.
type AudienceRequest struct {
	Kind  string `json:"kind" form:"kind"` // all, last_visit, never_visited, birthday
	Days  int    `json:"days,omitempty" form:"days"`
	Month int    `json:"month,omitempty" form:"month"`
}
