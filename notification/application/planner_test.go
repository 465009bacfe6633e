package application

import (
	"context"
	"testing"
	"time"

	clientsDomain "github.com/serenease/notify/clients/domain"
	"github.com/serenease/notify/notification/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func daysAgo(n int) *time.Time {
	t := time.Now().UTC().AddDate(0, 0, -n)
	return &t
}

func testAudienceClients() []*clientsDomain.Client {
	return []*clientsDomain.Client{
		{ID: "c1", DisplayName: "Ana", Email: "ana@example.com", Active: true, LastVisit: daysAgo(5)},
		{ID: "c2", DisplayName: "Bea", Email: "bea@example.com", Active: true, LastVisit: daysAgo(20)},
		{ID: "c3", DisplayName: "Carla", Email: "carla@example.com", Active: true, LastVisit: daysAgo(29)},
		{ID: "c4", DisplayName: "Dora", Email: "dora@example.com", Active: true, LastVisit: daysAgo(90)},
		{ID: "c5", DisplayName: "Eva", Email: "eva@example.com", Active: false, LastVisit: daysAgo(3)},
	}
}

type plannerFixture struct {
	campaigns  *memCampaignRepo
	templates  *memTemplateRepo
	deliveries *memDeliveryRepo
	prefRepo   *memPreferenceRepo
	planner    *CampaignPlanner
}

func newPlannerFixture(t *testing.T, clients ...*clientsDomain.Client) *plannerFixture {
	t.Helper()
	f := &plannerFixture{
		campaigns:  newMemCampaignRepo(),
		templates:  newMemTemplateRepo(),
		deliveries: newMemDeliveryRepo(),
		prefRepo:   newMemPreferenceRepo(),
	}
	f.planner = NewCampaignPlanner(
		f.campaigns,
		f.templates,
		f.deliveries,
		NewAudienceResolver(newMemClientRepo(clients...)),
		NewPreferenceResolver(f.prefRepo),
	)
	return f
}

func (f *plannerFixture) seedCampaign(t *testing.T, audience domain.AudienceFilter, scheduledAt *time.Time) *domain.Campaign {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.templates.Create(ctx, &domain.MessageTemplate{
		ID:      "tpl-offer",
		Name:    "autumn-offer",
		Channel: domain.ChannelEmail,
		Subject: "An offer for you, {{clientName}}",
		Body:    "Hi {{clientName}}, we miss you!",
	}))
	campaign := &domain.Campaign{
		ID:          "camp-1",
		Name:        "autumn",
		TemplateID:  "tpl-offer",
		Audience:    audience,
		ScheduledAt: scheduledAt,
		Status:      domain.CampaignStatusDraft,
	}
	require.NoError(t, f.campaigns.Create(ctx, campaign))
	return campaign
}

func TestPlanLastVisitWindowSelectsAndRenders(t *testing.T) {
	ctx := context.Background()
	f := newPlannerFixture(t, testAudienceClients()...)
	f.seedCampaign(t, domain.AudienceFilter{Kind: domain.AudienceLastVisit, Days: 30}, nil)

	result, err := f.planner.Plan(ctx, "camp-1")
	require.NoError(t, err)

	// c1, c2, c3 visited within 30 days; c4 is outside the window and the
	// inactive c5 is never resolved.
	assert.Equal(t, 3, result.Resolved)
	assert.Equal(t, 3, result.Planned)
	assert.Equal(t, 0, result.Skipped)

	batch, err := f.deliveries.ListByCampaign(ctx, "camp-1")
	require.NoError(t, err)
	require.Len(t, batch, 3)
	for _, d := range batch {
		assert.Equal(t, domain.SubjectCampaign, d.Kind)
		assert.NotContains(t, d.Body, "{{", "payload renders at plan time")
	}

	campaign, err := f.campaigns.GetByID(ctx, "camp-1")
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignStatusSending, campaign.Status)
}

func TestPlanIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newPlannerFixture(t, testAudienceClients()...)
	f.seedCampaign(t, domain.AudienceFilter{Kind: domain.AudienceAll}, nil)

	first, err := f.planner.Plan(ctx, "camp-1")
	require.NoError(t, err)
	assert.Equal(t, 4, first.Planned)

	second, err := f.planner.Plan(ctx, "camp-1")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Planned)
	assert.Equal(t, 4, second.Skipped, "existing recipients are skipped on re-plan")

	batch, err := f.deliveries.ListByCampaign(ctx, "camp-1")
	require.NoError(t, err)
	assert.Len(t, batch, 4)
}

func TestPlanScheduledInFutureStaysScheduled(t *testing.T) {
	ctx := context.Background()
	f := newPlannerFixture(t, testAudienceClients()...)
	sendAt := time.Now().UTC().Add(48 * time.Hour)
	f.seedCampaign(t, domain.AudienceFilter{Kind: domain.AudienceAll}, &sendAt)

	_, err := f.planner.Plan(ctx, "camp-1")
	require.NoError(t, err)

	campaign, err := f.campaigns.GetByID(ctx, "camp-1")
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignStatusScheduled, campaign.Status)

	due, err := f.deliveries.ListDue(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, due, "future campaign batch is not due yet")
}

func TestPlanSkipsOptedOutRecipients(t *testing.T) {
	ctx := context.Background()
	f := newPlannerFixture(t, testAudienceClients()...)
	f.seedCampaign(t, domain.AudienceFilter{Kind: domain.AudienceAll}, nil)

	require.NoError(t, f.prefRepo.Upsert(ctx, &domain.NotificationPreferences{
		Scope:        "c2",
		Rules:        defaultTestRules(),
		EmailEnabled: false,
		SMSEnabled:   true,
	}))

	result, err := f.planner.Plan(ctx, "camp-1")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Planned)
	assert.Equal(t, 1, result.Skipped)
}

func TestPlanRejectsTerminalCampaigns(t *testing.T) {
	ctx := context.Background()
	f := newPlannerFixture(t, testAudienceClients()...)
	campaign := f.seedCampaign(t, domain.AudienceFilter{Kind: domain.AudienceAll}, nil)
	require.NoError(t, f.campaigns.UpdateStatus(ctx, campaign.ID, domain.CampaignStatusDraft, domain.CampaignStatusCancelled))

	_, err := f.planner.Plan(ctx, "camp-1")
	assert.Error(t, err)
}

func TestRefreshStatusMarksSentWhenBatchDrains(t *testing.T) {
	ctx := context.Background()
	f := newPlannerFixture(t, testAudienceClients()...)
	f.seedCampaign(t, domain.AudienceFilter{Kind: domain.AudienceAll}, nil)

	_, err := f.planner.Plan(ctx, "camp-1")
	require.NoError(t, err)

	batch, err := f.deliveries.ListByCampaign(ctx, "camp-1")
	require.NoError(t, err)
	for _, d := range batch {
		require.NoError(t, f.deliveries.Claim(ctx, d.ID))
		require.NoError(t, f.deliveries.MarkSent(ctx, d.ID, 1))
	}

	require.NoError(t, f.planner.RefreshStatus(ctx, "camp-1"))
	campaign, err := f.campaigns.GetByID(ctx, "camp-1")
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignStatusSent, campaign.Status)
}

func TestCancelCampaignStopsPendingBatch(t *testing.T) {
	ctx := context.Background()
	f := newPlannerFixture(t, testAudienceClients()...)
	f.seedCampaign(t, domain.AudienceFilter{Kind: domain.AudienceAll}, nil)
	scheduler := NewDeliveryScheduler(f.deliveries)

	_, err := f.planner.Plan(ctx, "camp-1")
	require.NoError(t, err)

	require.NoError(t, scheduler.CancelCampaign(ctx, "camp-1"))

	pending, err := f.deliveries.ListPendingByCampaign(ctx, "camp-1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}
