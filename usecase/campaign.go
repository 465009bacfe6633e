package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	domainCampaign "github.com/serenease/notify/domains/campaign"
	"github.com/serenease/notify/notification/application"
	"github.com/serenease/notify/notification/domain"
	"github.com/serenease/notify/validations"
	"github.com/sirupsen/logrus"
)

type serviceCampaign struct {
	campaigns domain.ICampaignRepository
	templates domain.ITemplateRepository
	planner   *application.CampaignPlanner
	scheduler *application.DeliveryScheduler
	engine    *application.Engine
}

func NewCampaignService(
	campaigns domain.ICampaignRepository,
	templates domain.ITemplateRepository,
	planner *application.CampaignPlanner,
	scheduler *application.DeliveryScheduler,
	engine *application.Engine,
) domainCampaign.ICampaignUsecase {
	return &serviceCampaign{
		campaigns: campaigns,
		templates: templates,
		planner:   planner,
		scheduler: scheduler,
		engine:    engine,
	}
}

func audienceFromRequest(request domainCampaign.AudienceRequest) domain.AudienceFilter {
	return domain.AudienceFilter{
		Kind:  domain.AudienceKind(request.Kind),
		Days:  request.Days,
		Month: time.Month(request.Month),
	}
}

func (service *serviceCampaign) Create(ctx context.Context, request domainCampaign.CreateRequest) (*domain.Campaign, error) {
	if err := validations.ValidateCreateCampaign(ctx, request); err != nil {
		return nil, err
	}
	if _, err := service.templates.GetByID(ctx, request.TemplateID); err != nil {
		return nil, err
	}

	campaign := &domain.Campaign{
		ID:          uuid.NewString(),
		Name:        request.Name,
		TemplateID:  request.TemplateID,
		Audience:    audienceFromRequest(request.Audience),
		ScheduledAt: request.ScheduledAt,
		Status:      domain.CampaignStatusDraft,
	}
	if err := service.campaigns.Create(ctx, campaign); err != nil {
		return nil, err
	}
	logrus.Infof("[CAMPAIGN] Created %s (%s)", campaign.ID, campaign.Name)
	return campaign, nil
}

func (service *serviceCampaign) Plan(ctx context.Context, campaignID string) (*application.PlanResult, error) {
	result, err := service.planner.Plan(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	service.engine.Wake(ctx)
	return result, nil
}

// Cancel stops the pending remainder of the batch. Deliveries already sent
// stay sent.
func (service *serviceCampaign) Cancel(ctx context.Context, campaignID string) error {
	campaign, err := service.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return err
	}
	if campaign.Status == domain.CampaignStatusSent || campaign.Status == domain.CampaignStatusCancelled {
		return domain.ErrInvalidTransition
	}

	if err := service.scheduler.CancelCampaign(ctx, campaignID); err != nil {
		return err
	}
	return service.campaigns.UpdateStatus(ctx, campaignID, campaign.Status, domain.CampaignStatusCancelled)
}

func (service *serviceCampaign) Get(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	return service.campaigns.GetByID(ctx, campaignID)
}

func (service *serviceCampaign) List(ctx context.Context) ([]*domain.Campaign, error) {
	return service.campaigns.List(ctx)
}

func (service *serviceCampaign) History(ctx context.Context, campaignID string) ([]*domain.ScheduledDelivery, error) {
	if _, err := service.campaigns.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return service.scheduler.HistoryByCampaign(ctx, campaignID)
}
