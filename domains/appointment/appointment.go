package appointment

import (
	"context"
	"time"

	apptDomain "github.com/serenease/notify/appointments/domain"
)

// IAppointmentUsecase is the booking surface. Every mutation also keeps the
// reminder schedule in sync and wakes the engine.
type IAppointmentUsecase interface {
	Create(ctx context.Context, request CreateRequest) (*apptDomain.Appointment, error)
	Reschedule(ctx context.Context, request RescheduleRequest) (*apptDomain.Appointment, error)
	Cancel(ctx context.Context, appointmentID string) error
	Complete(ctx context.Context, appointmentID string) error
	Get(ctx context.Context, appointmentID string) (*apptDomain.Appointment, error)
	ListUpcoming(ctx context.Context) ([]*apptDomain.Appointment, error)
}

type CreateRequest struct {
	ClientID string    `json:"client_id" form:"client_id"`
	Service  string    `json:"service,omitempty" form:"service"`
	StartAt  time.Time `json:"start_at" form:"start_at"`
	EndAt    time.Time `json:"end_at" form:"end_at"`
}

type RescheduleRequest struct {
	ID      string    `json:"id" form:"id"`
	StartAt time.Time `json:"start_at" form:"start_at"`
	EndAt   time.Time `json:"end_at" form:"end_at"`
}
