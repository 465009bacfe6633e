package domain

import (
	"context"
	"errors"
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusBooked    AppointmentStatus = "booked"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// Appointment is the scheduling record reminders hang off. The engine treats
// it as a read model; booking lives elsewhere.
type Appointment struct {
	ID        string            `json:"id"`
	ClientID  string            `json:"client_id"`
	Service   string            `json:"service,omitempty"`
	StartAt   time.Time         `json:"start_at"`
	EndAt     time.Time         `json:"end_at"`
	Status    AppointmentStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

var ErrAppointmentNotFound = errors.New("appointment not found")

type IAppointmentRepository interface {
	InitSchema(ctx context.Context) error
	Create(ctx context.Context, appt *Appointment) error
	Update(ctx context.Context, appt *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	ListUpcomingByClient(ctx context.Context, clientID string, after time.Time) ([]*Appointment, error)
	ListUpcoming(ctx context.Context, after time.Time) ([]*Appointment, error)
}
