package domain

import (
	"fmt"
	"time"
)

// DeliveryStatus is the lifecycle state of a ScheduledDelivery.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusClaimed   DeliveryStatus = "claimed" // in-flight dispatch marker
	DeliveryStatusSent      DeliveryStatus = "sent"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusOpened    DeliveryStatus = "opened"
	DeliveryStatusFailed    DeliveryStatus = "failed"
	DeliveryStatusCancelled DeliveryStatus = "cancelled"
)

// allowedTransitions encodes the forward-only state machine. Anything not
// listed is rejected, which is what makes failed/cancelled/opened terminal.
var allowedTransitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryStatusPending:   {DeliveryStatusClaimed, DeliveryStatusCancelled},
	DeliveryStatusClaimed:   {DeliveryStatusPending, DeliveryStatusSent, DeliveryStatusFailed, DeliveryStatusCancelled},
	DeliveryStatusSent:      {DeliveryStatusDelivered},
	DeliveryStatusDelivered: {DeliveryStatusOpened},
}

// CanTransition reports whether from -> to is a legal state change.
// claimed -> pending is the retry release path.
func CanTransition(from, to DeliveryStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed from s.
func (s DeliveryStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

// SubjectKind distinguishes the two delivery origins.
type SubjectKind string

const (
	SubjectReminder SubjectKind = "reminder"
	SubjectCampaign SubjectKind = "campaign"
)

// ScheduledDelivery is the central entity of the engine: one message that
// should leave the system at SendAt over Channel. The scheduler owns its
// lifecycle exclusively; everything else requests transitions through it.
type ScheduledDelivery struct {
	ID   string      `json:"id"`
	Kind SubjectKind `json:"kind"`

	// Reminder subject
	AppointmentID string        `json:"appointment_id,omitempty"`
	RuleOffset    time.Duration `json:"rule_offset,omitempty"`

	// Campaign subject
	CampaignID  string `json:"campaign_id,omitempty"`
	RecipientID string `json:"recipient_id,omitempty"`

	ClientID  string         `json:"client_id"`
	Channel   Channel        `json:"channel"`
	SendAt    time.Time      `json:"send_at"`
	Status    DeliveryStatus `json:"status"`
	Attempts  int            `json:"attempts"`
	LastError string         `json:"last_error,omitempty"`

	// Rendered payload. Reminders are rendered at dispatch time so client
	// data is fresh; campaigns are rendered at plan time.
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IdempotencyKey identifies the logical message independent of the delivery
// row. At most one non-cancelled delivery may exist per key.
func (d ScheduledDelivery) IdempotencyKey() string {
	if d.Kind == SubjectCampaign {
		return CampaignKey(d.CampaignID, d.RecipientID)
	}
	return ReminderKey(d.AppointmentID, d.RuleOffset, d.Channel)
}

// ReminderKey builds the idempotency key for an appointment reminder.
func ReminderKey(appointmentID string, offset time.Duration, channel Channel) string {
	return fmt.Sprintf("reminder:%s:%d:%s", appointmentID, int64(offset.Seconds()), channel)
}

// CampaignKey builds the idempotency key for a campaign message.
func CampaignKey(campaignID, recipientID string) string {
	return fmt.Sprintf("campaign:%s:%s", campaignID, recipientID)
}
