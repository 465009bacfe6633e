package application

import (
	"context"
	"testing"
	"time"

	"github.com/serenease/notify/notification/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTestRules() []domain.ReminderRule {
	return []domain.ReminderRule{
		{Channel: domain.ChannelEmail, Offset: 24 * time.Hour, Enabled: true},
		{Channel: domain.ChannelSMS, Offset: time.Hour, Enabled: true},
	}
}

func TestReconcileCreatesPlannedDeliveries(t *testing.T) {
	ctx := context.Background()
	repo := newMemDeliveryRepo()
	scheduler := NewDeliveryScheduler(repo)

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	err := scheduler.Reconcile(ctx, "appt-1", "client-1", start, defaultTestRules())
	require.NoError(t, err)

	pending, err := repo.ListPendingByAppointment(ctx, "appt-1")
	require.NoError(t, err)
	require.Len(t, pending, 2)

	// Ordered by send_at ascending: the 24h-before email first.
	assert.Equal(t, domain.ChannelEmail, pending[0].Channel)
	assert.True(t, pending[0].SendAt.Equal(start.Add(-24*time.Hour)))
	assert.Equal(t, domain.ChannelSMS, pending[1].Channel)
	assert.True(t, pending[1].SendAt.Equal(start.Add(-time.Hour)))

	for _, d := range pending {
		assert.Equal(t, domain.SubjectReminder, d.Kind)
		assert.Equal(t, "client-1", d.ClientID)
		assert.Equal(t, domain.DeliveryStatusPending, d.Status)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newMemDeliveryRepo()
	scheduler := NewDeliveryScheduler(repo)

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	rules := defaultTestRules()

	require.NoError(t, scheduler.Reconcile(ctx, "appt-1", "client-1", start, rules))
	require.NoError(t, scheduler.Reconcile(ctx, "appt-1", "client-1", start, rules))
	require.NoError(t, scheduler.Reconcile(ctx, "appt-1", "client-1", start, rules))

	history, err := repo.ListByAppointment(ctx, "appt-1")
	require.NoError(t, err)
	assert.Len(t, history, 2, "repeat reconciliation must not create new rows")
}

func TestReconcileRescheduleCancelsAndRecreates(t *testing.T) {
	ctx := context.Background()
	repo := newMemDeliveryRepo()
	scheduler := NewDeliveryScheduler(repo)

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	rules := defaultTestRules()
	require.NoError(t, scheduler.Reconcile(ctx, "appt-1", "client-1", start, rules))

	moved := start.Add(2 * time.Hour)
	require.NoError(t, scheduler.Reconcile(ctx, "appt-1", "client-1", moved, rules))

	pending, err := repo.ListPendingByAppointment(ctx, "appt-1")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, d := range pending {
		assert.True(t, d.SendAt.Equal(moved.Add(-d.RuleOffset)),
			"pending rows must track the new appointment time")
	}

	history, err := repo.ListByAppointment(ctx, "appt-1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	cancelled := 0
	for _, d := range history {
		if d.Status == domain.DeliveryStatusCancelled {
			cancelled++
		}
	}
	assert.Equal(t, 2, cancelled, "old slots stay visible as cancelled history")
}

func TestReconcileCancelsStaleRules(t *testing.T) {
	ctx := context.Background()
	repo := newMemDeliveryRepo()
	scheduler := NewDeliveryScheduler(repo)

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	require.NoError(t, scheduler.Reconcile(ctx, "appt-1", "client-1", start, defaultTestRules()))

	// SMS rule switched off: its pending row must go away.
	reduced := []domain.ReminderRule{
		{Channel: domain.ChannelEmail, Offset: 24 * time.Hour, Enabled: true},
		{Channel: domain.ChannelSMS, Offset: time.Hour, Enabled: false},
	}
	require.NoError(t, scheduler.Reconcile(ctx, "appt-1", "client-1", start, reduced))

	pending, err := repo.ListPendingByAppointment(ctx, "appt-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.ChannelEmail, pending[0].Channel)
}

func TestReconcileKeepsDueUnclaimedDelivery(t *testing.T) {
	ctx := context.Background()
	repo := newMemDeliveryRepo()
	scheduler := NewDeliveryScheduler(repo)

	// The SMS reminder came due half an hour ago and the engine has not
	// claimed it yet, e.g. a preference save landing just after the slot.
	start := time.Now().UTC().Add(30 * time.Minute).Truncate(time.Second)
	overdue := &domain.ScheduledDelivery{
		Kind:          domain.SubjectReminder,
		AppointmentID: "appt-1",
		RuleOffset:    time.Hour,
		ClientID:      "client-1",
		Channel:       domain.ChannelSMS,
		SendAt:        start.Add(-time.Hour),
		Status:        domain.DeliveryStatusPending,
	}
	require.NoError(t, repo.Create(ctx, overdue))

	require.NoError(t, scheduler.Reconcile(ctx, "appt-1", "client-1", start, defaultTestRules()))

	pending, err := repo.ListPendingByAppointment(ctx, "appt-1")
	require.NoError(t, err)
	require.Len(t, pending, 1, "the overdue reminder must survive reconciliation")
	assert.Equal(t, overdue.ID, pending[0].ID)

	history, err := repo.ListByAppointment(ctx, "appt-1")
	require.NoError(t, err)
	assert.Len(t, history, 1, "no cancelled replacement rows")
}

func TestReconcileDoesNotResurrectConsumedKeys(t *testing.T) {
	ctx := context.Background()
	repo := newMemDeliveryRepo()
	scheduler := NewDeliveryScheduler(repo)

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	rules := defaultTestRules()
	require.NoError(t, scheduler.Reconcile(ctx, "appt-1", "client-1", start, rules))

	pending, err := repo.ListPendingByAppointment(ctx, "appt-1")
	require.NoError(t, err)
	sent := pending[0]
	require.NoError(t, repo.Claim(ctx, sent.ID))
	require.NoError(t, repo.MarkSent(ctx, sent.ID, 1))

	require.NoError(t, scheduler.Reconcile(ctx, "appt-1", "client-1", start, rules))

	history, err := repo.ListByAppointment(ctx, "appt-1")
	require.NoError(t, err)
	assert.Len(t, history, 2, "a sent reminder must never be scheduled again")
}

func TestCancelAllLeavesHistoryIntact(t *testing.T) {
	ctx := context.Background()
	repo := newMemDeliveryRepo()
	scheduler := NewDeliveryScheduler(repo)

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	require.NoError(t, scheduler.Reconcile(ctx, "appt-1", "client-1", start, defaultTestRules()))
	require.NoError(t, scheduler.CancelAll(ctx, "appt-1"))

	pending, err := repo.ListPendingByAppointment(ctx, "appt-1")
	require.NoError(t, err)
	assert.Empty(t, pending)

	history, err := repo.ListByAppointment(ctx, "appt-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, d := range history {
		assert.Equal(t, domain.DeliveryStatusCancelled, d.Status)
	}
}

func TestClaimSucceedsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	repo := newMemDeliveryRepo()
	scheduler := NewDeliveryScheduler(repo)

	d := &domain.ScheduledDelivery{
		Kind:          domain.SubjectReminder,
		AppointmentID: "appt-1",
		RuleOffset:    time.Hour,
		ClientID:      "client-1",
		Channel:       domain.ChannelEmail,
		SendAt:        time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, d))

	require.NoError(t, scheduler.Claim(ctx, d.ID))
	assert.ErrorIs(t, scheduler.Claim(ctx, d.ID), domain.ErrInvalidTransition)
}

func TestDueOrdersOldestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newMemDeliveryRepo()
	scheduler := NewDeliveryScheduler(repo)

	now := time.Now().UTC()
	for i, sendAt := range []time.Time{now.Add(-time.Minute), now.Add(-time.Hour), now.Add(time.Hour)} {
		d := &domain.ScheduledDelivery{
			Kind:          domain.SubjectReminder,
			AppointmentID: "appt-1",
			RuleOffset:    time.Duration(i+1) * time.Hour,
			ClientID:      "client-1",
			Channel:       domain.ChannelEmail,
			SendAt:        sendAt,
		}
		require.NoError(t, repo.Create(ctx, d))
	}

	due, err := scheduler.Due(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 2, "future rows are not due")
	assert.True(t, due[0].SendAt.Before(due[1].SendAt))
}
