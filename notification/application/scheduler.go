package application

import (
	"context"
	"sync"
	"time"

	"github.com/serenease/notify/notification/domain"
	"github.com/sirupsen/logrus"
)

// DeliveryScheduler owns the ScheduledDelivery lifecycle. Every insert,
// cancellation and reconciliation goes through here; nothing else writes
// delivery rows.
type DeliveryScheduler struct {
	deliveries domain.IDeliveryRepository

	// Per-appointment serialization. Two reconciliations for the same
	// appointment must not interleave or they could race duplicate keys;
	// different appointments proceed independently.
	apptLocksMu sync.Mutex
	apptLocks   map[string]*sync.Mutex
}

func NewDeliveryScheduler(deliveries domain.IDeliveryRepository) *DeliveryScheduler {
	return &DeliveryScheduler{
		deliveries: deliveries,
		apptLocks:  make(map[string]*sync.Mutex),
	}
}

func (s *DeliveryScheduler) lockAppointment(appointmentID string) func() {
	s.apptLocksMu.Lock()
	lock, ok := s.apptLocks[appointmentID]
	if !ok {
		lock = &sync.Mutex{}
		s.apptLocks[appointmentID] = lock
	}
	s.apptLocksMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Reconcile brings the pending deliveries for an appointment in line with the
// recomputed rule set: pending rows whose key is no longer produced are
// cancelled, matching ones are kept (send_at refreshed on reschedule), and
// missing ones are created. Sent/failed rows are history and stay untouched.
// Idempotent: calling it twice with the same inputs changes nothing.
func (s *DeliveryScheduler) Reconcile(ctx context.Context, appointmentID, clientID string, appointmentStart time.Time, rules []domain.ReminderRule) error {
	unlock := s.lockAppointment(appointmentID)
	defer unlock()

	now := time.Now().UTC()
	planned := domain.ComputeSendTimes(appointmentStart, rules, now)

	wanted := make(map[string]domain.PlannedSend, len(planned))
	for _, p := range planned {
		wanted[domain.ReminderKey(appointmentID, p.Offset, p.Channel)] = p
	}

	// Same plan without the past-send filter. A pending row that came due
	// moments ago but has not been claimed yet still belongs to the current
	// rule set; cancelling it here would silently eat a due reminder.
	due := make(map[string]domain.PlannedSend, len(rules))
	for _, p := range domain.ComputeSendTimes(appointmentStart, rules, time.Time{}) {
		due[domain.ReminderKey(appointmentID, p.Offset, p.Channel)] = p
	}

	pending, err := s.deliveries.ListPendingByAppointment(ctx, appointmentID)
	if err != nil {
		return err
	}

	// Cancel stale, keep still-wanted.
	existing := make(map[string]*domain.ScheduledDelivery, len(pending))
	for _, d := range pending {
		key := d.IdempotencyKey()
		p, stillWanted := wanted[key]
		if !stillWanted {
			if dp, ok := due[key]; ok && d.SendAt.Equal(dp.SendAt) {
				// Past its send_at but still produced by the rules at the
				// same slot: leave it for the engine to dispatch.
				existing[key] = d
				continue
			}
			if err := s.deliveries.Cancel(ctx, d.ID); err != nil && err != domain.ErrInvalidTransition {
				return err
			}
			logrus.Debugf("[SCHEDULER] Cancelled stale delivery %s (%s)", d.ID, key)
			continue
		}

		if !d.SendAt.Equal(p.SendAt) {
			// Same logical reminder, new appointment time. Cancel and
			// recreate so history shows the old slot as cancelled.
			if err := s.deliveries.Cancel(ctx, d.ID); err != nil && err != domain.ErrInvalidTransition {
				return err
			}
			continue
		}
		existing[key] = d
	}

	// Insert what is missing.
	for key, p := range wanted {
		if _, ok := existing[key]; ok {
			continue
		}
		delivery := &domain.ScheduledDelivery{
			Kind:          domain.SubjectReminder,
			AppointmentID: appointmentID,
			RuleOffset:    p.Offset,
			ClientID:      clientID,
			Channel:       p.Channel,
			SendAt:        p.SendAt,
			Status:        domain.DeliveryStatusPending,
		}
		err := s.deliveries.Create(ctx, delivery)
		if err == domain.ErrDuplicateDelivery {
			// The key is occupied by a sent/failed row: that reminder already
			// left the system once and is not re-sent.
			logrus.Debugf("[SCHEDULER] Skipping %s, key already consumed", key)
			continue
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// CancelAll cancels every pending delivery for an appointment. Used on
// appointment cancellation or deletion.
func (s *DeliveryScheduler) CancelAll(ctx context.Context, appointmentID string) error {
	unlock := s.lockAppointment(appointmentID)
	defer unlock()

	pending, err := s.deliveries.ListPendingByAppointment(ctx, appointmentID)
	if err != nil {
		return err
	}

	for _, d := range pending {
		if err := s.deliveries.Cancel(ctx, d.ID); err != nil && err != domain.ErrInvalidTransition {
			return err
		}
	}
	return nil
}

// CancelCampaign cancels the pending batch of a campaign.
func (s *DeliveryScheduler) CancelCampaign(ctx context.Context, campaignID string) error {
	pending, err := s.deliveries.ListPendingByCampaign(ctx, campaignID)
	if err != nil {
		return err
	}

	for _, d := range pending {
		if err := s.deliveries.Cancel(ctx, d.ID); err != nil && err != domain.ErrInvalidTransition {
			return err
		}
	}
	return nil
}

// Due returns pending deliveries ripe at now, ordered oldest first.
func (s *DeliveryScheduler) Due(ctx context.Context, now time.Time) ([]*domain.ScheduledDelivery, error) {
	return s.deliveries.ListDue(ctx, now)
}

// NextPendingAt returns the earliest pending send instant (zero when idle).
func (s *DeliveryScheduler) NextPendingAt(ctx context.Context) (time.Time, error) {
	return s.deliveries.NextPendingAt(ctx)
}

// Claim marks a delivery in-flight. Exactly one caller succeeds per delivery;
// the rest get ErrInvalidTransition.
func (s *DeliveryScheduler) Claim(ctx context.Context, id string) error {
	return s.deliveries.Claim(ctx, id)
}

// Release hands a claimed delivery back to the pending queue without
// counting an attempt. Used when a claim cannot be dispatched right away
// (worker pool saturated).
func (s *DeliveryScheduler) Release(ctx context.Context, id string, sendAt time.Time, attempts int) error {
	return s.deliveries.Release(ctx, id, sendAt, attempts)
}

// HistoryByAppointment returns every delivery ever scheduled for an
// appointment, cancelled and failed rows included.
func (s *DeliveryScheduler) HistoryByAppointment(ctx context.Context, appointmentID string) ([]*domain.ScheduledDelivery, error) {
	return s.deliveries.ListByAppointment(ctx, appointmentID)
}

// HistoryByCampaign returns the full batch of a campaign.
func (s *DeliveryScheduler) HistoryByCampaign(ctx context.Context, campaignID string) ([]*domain.ScheduledDelivery, error) {
	return s.deliveries.ListByCampaign(ctx, campaignID)
}

// MarkDelivered records a transport delivery receipt.
func (s *DeliveryScheduler) MarkDelivered(ctx context.Context, id string) error {
	return s.deliveries.MarkDelivered(ctx, id)
}

// MarkOpened records an open receipt.
func (s *DeliveryScheduler) MarkOpened(ctx context.Context, id string) error {
	return s.deliveries.MarkOpened(ctx, id)
}
