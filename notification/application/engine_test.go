package application

import (
	"context"
	"testing"
	"time"

	clientsDomain "github.com/serenease/notify/clients/domain"
	"github.com/serenease/notify/notification/domain"
	"github.com/serenease/notify/pkg/msgworker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, deliveries *memDeliveryRepo, campaigns *memCampaignRepo, tick time.Duration) *Engine {
	t.Helper()

	templates := newMemTemplateRepo()
	prefs := NewPreferenceResolver(newMemPreferenceRepo())
	clients := newMemClientRepo(&clientsDomain.Client{
		ID:          "c1",
		DisplayName: "Ana",
		Email:       "ana@example.com",
		Phone:       "+34600111222",
		Active:      true,
	})
	appts := newMemAppointmentRepo()

	// Dry run: deliveries flow through the full claim/dispatch path without
	// any transport behind them.
	dispatcher := NewDispatcher(deliveries, templates, clients, appts, prefs,
		NewAdapterRegistry(), DispatchPolicy{DryRun: true})
	scheduler := NewDeliveryScheduler(deliveries)
	planner := NewCampaignPlanner(campaigns, templates, deliveries,
		NewAudienceResolver(clients), prefs)
	pool := msgworker.NewDeliveryWorkerPool(2, 16)

	return NewEngine(scheduler, dispatcher, planner, campaigns, pool, nil, tick)
}

func TestEngineDispatchesDueDeliveries(t *testing.T) {
	ctx := context.Background()
	deliveries := newMemDeliveryRepo()
	engine := newTestEngine(t, deliveries, newMemCampaignRepo(), time.Hour)

	d := &domain.ScheduledDelivery{
		Kind:        domain.SubjectCampaign,
		CampaignID:  "camp-1",
		RecipientID: "c1",
		ClientID:    "c1",
		Channel:     domain.ChannelEmail,
		SendAt:      time.Now().UTC().Add(-time.Minute),
		Subject:     "hello",
		Body:        "hello",
	}
	require.NoError(t, deliveries.Create(ctx, d))

	engine.Start(ctx)
	defer engine.Stop()

	require.Eventually(t, func() bool {
		after, err := deliveries.GetByID(ctx, d.ID)
		return err == nil && after.Status == domain.DeliveryStatusSent
	}, 5*time.Second, 20*time.Millisecond, "due delivery must be picked up on the first tick")
}

func TestEngineWakeShortensSleep(t *testing.T) {
	ctx := context.Background()
	deliveries := newMemDeliveryRepo()
	// A long tick: without the wake signal this delivery would sit for an hour.
	engine := newTestEngine(t, deliveries, newMemCampaignRepo(), time.Hour)

	engine.Start(ctx)
	defer engine.Stop()

	// Let the loop finish its first (empty) scan and go to sleep.
	require.Eventually(t, func() bool {
		return !engine.Stats().LastTickAt.IsZero()
	}, 5*time.Second, 20*time.Millisecond)

	d := &domain.ScheduledDelivery{
		Kind:        domain.SubjectCampaign,
		CampaignID:  "camp-1",
		RecipientID: "c1",
		ClientID:    "c1",
		Channel:     domain.ChannelEmail,
		SendAt:      time.Now().UTC().Add(-time.Second),
		Subject:     "hello",
		Body:        "hello",
	}
	require.NoError(t, deliveries.Create(ctx, d))
	engine.Wake(ctx)

	require.Eventually(t, func() bool {
		after, err := deliveries.GetByID(ctx, d.ID)
		return err == nil && after.Status == domain.DeliveryStatusSent
	}, 5*time.Second, 20*time.Millisecond, "wake must trigger an immediate scan")
}

func TestEngineStopIsIdempotent(t *testing.T) {
	engine := newTestEngine(t, newMemDeliveryRepo(), newMemCampaignRepo(), time.Hour)
	engine.Start(context.Background())

	assert.True(t, engine.Stats().Running)
	engine.Stop()
	engine.Stop()
	assert.False(t, engine.Stats().Running)
}

func TestEngineStatsSnapshot(t *testing.T) {
	engine := newTestEngine(t, newMemDeliveryRepo(), newMemCampaignRepo(), 42*time.Second)
	engine.Start(context.Background())
	defer engine.Stop()

	require.Eventually(t, func() bool {
		return !engine.Stats().LastTickAt.IsZero()
	}, 5*time.Second, 20*time.Millisecond)

	stats := engine.Stats()
	assert.True(t, stats.Running)
	assert.Equal(t, "42s", stats.TickInterval)
	assert.Equal(t, 2, stats.Pool.NumWorkers)
}
