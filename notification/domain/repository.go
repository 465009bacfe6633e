package domain

import (
	"context"
	"time"
)

// IDeliveryRepository persists ScheduledDelivery rows. Status changes are
// conditional updates keyed by (id, expected current status): a method
// returns ErrInvalidTransition when the row was not in the expected state,
// which is what makes claim/cancel races safe across processes.
type IDeliveryRepository interface {
	InitSchema(ctx context.Context) error

	// Create inserts a pending delivery. ErrDuplicateDelivery when a
	// non-cancelled row already exists for the same idempotency key.
	Create(ctx context.Context, delivery *ScheduledDelivery) error

	GetByID(ctx context.Context, id string) (*ScheduledDelivery, error)

	// ListDue returns pending deliveries with send_at <= now, ordered by
	// send_at ASC then created_at ASC (FIFO tie-break).
	ListDue(ctx context.Context, now time.Time) ([]*ScheduledDelivery, error)

	// NextPendingAt returns the earliest pending send_at, or the zero time
	// when nothing is pending. Drives the adaptive tick timer.
	NextPendingAt(ctx context.Context) (time.Time, error)

	ListPendingByAppointment(ctx context.Context, appointmentID string) ([]*ScheduledDelivery, error)
	ListPendingByCampaign(ctx context.Context, campaignID string) ([]*ScheduledDelivery, error)
	ListByAppointment(ctx context.Context, appointmentID string) ([]*ScheduledDelivery, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]*ScheduledDelivery, error)

	// Claim flips pending -> claimed so exactly one worker owns the dispatch.
	Claim(ctx context.Context, id string) error
	// Release returns a claimed delivery to pending with a new send_at
	// (retry backoff) and the updated attempt count.
	Release(ctx context.Context, id string, sendAt time.Time, attempts int) error
	MarkSent(ctx context.Context, id string, attempts int) error
	MarkFailed(ctx context.Context, id string, lastError string, attempts int) error
	Cancel(ctx context.Context, id string) error
	// CancelClaimed cancels a delivery discovered to be opted out after it
	// was already claimed for dispatch.
	CancelClaimed(ctx context.Context, id string) error
	MarkDelivered(ctx context.Context, id string) error
	MarkOpened(ctx context.Context, id string) error

	// UpdatePayload stores the rendered subject/body on the delivery record.
	UpdatePayload(ctx context.Context, id, subject, body string) error
}

type IPreferenceRepository interface {
	InitSchema(ctx context.Context) error
	Upsert(ctx context.Context, prefs *NotificationPreferences) error
	GetByScope(ctx context.Context, scope string) (*NotificationPreferences, error)
	DeleteScope(ctx context.Context, scope string) error
}

type ITemplateRepository interface {
	InitSchema(ctx context.Context) error
	Create(ctx context.Context, tpl *MessageTemplate) error
	Update(ctx context.Context, tpl *MessageTemplate) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*MessageTemplate, error)
	FindByName(ctx context.Context, name string) (*MessageTemplate, error)
	List(ctx context.Context) ([]*MessageTemplate, error)
}

type ICampaignRepository interface {
	InitSchema(ctx context.Context) error
	Create(ctx context.Context, campaign *Campaign) error
	GetByID(ctx context.Context, id string) (*Campaign, error)
	List(ctx context.Context) ([]*Campaign, error)
	// UpdateStatus is conditional on the current status; ErrInvalidTransition
	// when the campaign moved concurrently.
	UpdateStatus(ctx context.Context, id string, from, to CampaignStatus) error
}
