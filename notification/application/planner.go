package application

import (
	"context"
	"fmt"
	"time"

	"github.com/serenease/notify/notification/domain"
	"github.com/serenease/notify/pkg/render"
	"github.com/sirupsen/logrus"
)

// CampaignPlanner turns a campaign into its delivery batch. Planning is
// idempotent: existing (campaign, recipient) keys are skipped, so re-running
// after a partial failure only fills the gaps.
type CampaignPlanner struct {
	campaigns  domain.ICampaignRepository
	templates  domain.ITemplateRepository
	deliveries domain.IDeliveryRepository
	resolver   *AudienceResolver
	prefs      *PreferenceResolver
}

func NewCampaignPlanner(
	campaigns domain.ICampaignRepository,
	templates domain.ITemplateRepository,
	deliveries domain.IDeliveryRepository,
	resolver *AudienceResolver,
	prefs *PreferenceResolver,
) *CampaignPlanner {
	return &CampaignPlanner{
		campaigns:  campaigns,
		templates:  templates,
		deliveries: deliveries,
		resolver:   resolver,
		prefs:      prefs,
	}
}

// PlanResult summarizes one planning run.
type PlanResult struct {
	CampaignID string `json:"campaign_id"`
	Resolved   int    `json:"resolved"`
	Planned    int    `json:"planned"`
	Skipped    int    `json:"skipped"` // already planned or unreachable recipients
}

// Plan resolves the audience once, renders the template per recipient and
// enqueues the batch. Campaign payloads are rendered here, at plan time; the
// audience snapshot and the rendered text both freeze at this moment.
func (p *CampaignPlanner) Plan(ctx context.Context, campaignID string) (*PlanResult, error) {
	campaign, err := p.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status == domain.CampaignStatusSent || campaign.Status == domain.CampaignStatusCancelled {
		return nil, fmt.Errorf("campaign %s is %s and cannot be planned", campaignID, campaign.Status)
	}

	tpl, err := p.templates.GetByID(ctx, campaign.TemplateID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sendAt := now
	if campaign.ScheduledAt != nil {
		sendAt = campaign.ScheduledAt.UTC()
	}

	recipients, err := p.resolver.Resolve(ctx, campaign.Audience, now)
	if err != nil {
		return nil, err
	}

	result := &PlanResult{CampaignID: campaignID, Resolved: len(recipients)}

	for _, client := range recipients {
		if client.ContactFor(string(tpl.Channel)) == "" {
			logrus.Debugf("[PLANNER] Skipping client %s, no %s contact", client.ID, tpl.Channel)
			result.Skipped++
			continue
		}

		prefs, err := p.prefs.Effective(ctx, client.ID)
		if err != nil {
			return result, err
		}
		if !prefs.ChannelEnabled(tpl.Channel) {
			result.Skipped++
			continue
		}

		bindings := CampaignBindings(client)
		delivery := &domain.ScheduledDelivery{
			Kind:        domain.SubjectCampaign,
			CampaignID:  campaign.ID,
			RecipientID: client.ID,
			ClientID:    client.ID,
			Channel:     tpl.Channel,
			SendAt:      sendAt,
			Status:      domain.DeliveryStatusPending,
			Subject:     render.Render(tpl.Subject, bindings),
			Body:        render.Render(tpl.Body, bindings),
		}

		err = p.deliveries.Create(ctx, delivery)
		if err == domain.ErrDuplicateDelivery {
			// Already planned in a previous run; re-planning is a no-op for
			// this recipient.
			result.Skipped++
			continue
		}
		if err != nil {
			return result, err
		}
		result.Planned++
	}

	target := domain.CampaignStatusSending
	if campaign.ScheduledAt != nil && campaign.ScheduledAt.After(now) {
		target = domain.CampaignStatusScheduled
	}
	if campaign.Status != target {
		if err := p.campaigns.UpdateStatus(ctx, campaign.ID, campaign.Status, target); err != nil && err != domain.ErrInvalidTransition {
			return result, err
		}
	}

	logrus.Infof("[PLANNER] Campaign %s planned: %d resolved, %d new, %d skipped",
		campaignID, result.Resolved, result.Planned, result.Skipped)
	return result, nil
}

// RefreshStatus advances sending/scheduled campaigns to sent once their
// batch has no pending deliveries left. Called from the engine safety sweep.
func (p *CampaignPlanner) RefreshStatus(ctx context.Context, campaignID string) error {
	campaign, err := p.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return err
	}
	if campaign.Status != domain.CampaignStatusSending && campaign.Status != domain.CampaignStatusScheduled {
		return nil
	}

	pending, err := p.deliveries.ListPendingByCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		return nil
	}

	// Nothing pending and already past plan time: the batch is done.
	batch, err := p.deliveries.ListByCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil // never planned; leave alone
	}

	err = p.campaigns.UpdateStatus(ctx, campaignID, campaign.Status, domain.CampaignStatusSent)
	if err != nil && err != domain.ErrInvalidTransition {
		return err
	}
	return nil
}
