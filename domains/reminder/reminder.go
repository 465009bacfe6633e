package reminder

import (
	"context"

	"github.com/serenease/notify/notification/domain"
)

// IReminderUsecase reacts to appointment lifecycle events and exposes the
// reminder delivery history. Every mutation leaves the pending schedule
// consistent with the appointment book and the effective preferences.
type IReminderUsecase interface {
	AppointmentCreated(ctx context.Context, appointmentID string) error
	AppointmentRescheduled(ctx context.Context, appointmentID string) error
	AppointmentCancelled(ctx context.Context, appointmentID string) error
	PreferencesChanged(ctx context.Context, scope string) error
	DeliveryHistory(ctx context.Context, appointmentID string) ([]*domain.ScheduledDelivery, error)
	MarkDelivered(ctx context.Context, request ReceiptRequest) error
	MarkOpened(ctx context.Context, request ReceiptRequest) error
}

// ReceiptRequest carries a transport receipt for one delivery.
type ReceiptRequest struct {
	DeliveryID string `json:"delivery_id" form:"delivery_id"`
}
