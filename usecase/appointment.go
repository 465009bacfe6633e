package usecase

import (
	"context"

	"github.com/google/uuid"
	apptDomain "github.com/serenease/notify/appointments/domain"
	clientsDomain "github.com/serenease/notify/clients/domain"
	domainAppointment "github.com/serenease/notify/domains/appointment"
	domainReminder "github.com/serenease/notify/domains/reminder"
	"github.com/serenease/notify/validations"
	"github.com/sirupsen/logrus"
)

type serviceAppointment struct {
	appointments apptDomain.IAppointmentRepository
	clients      clientsDomain.IClientRepository
	reminders    domainReminder.IReminderUsecase
}

func NewAppointmentService(
	appointments apptDomain.IAppointmentRepository,
	clients clientsDomain.IClientRepository,
	reminders domainReminder.IReminderUsecase,
) domainAppointment.IAppointmentUsecase {
	return &serviceAppointment{
		appointments: appointments,
		clients:      clients,
		reminders:    reminders,
	}
}

func (service *serviceAppointment) Create(ctx context.Context, request domainAppointment.CreateRequest) (*apptDomain.Appointment, error) {
	if err := validations.ValidateCreateAppointment(ctx, request); err != nil {
		return nil, err
	}
	if _, err := service.clients.GetByID(ctx, request.ClientID); err != nil {
		return nil, err
	}

	appt := &apptDomain.Appointment{
		ID:       uuid.NewString(),
		ClientID: request.ClientID,
		Service:  request.Service,
		StartAt:  request.StartAt.UTC(),
		EndAt:    request.EndAt.UTC(),
		Status:   apptDomain.AppointmentStatusBooked,
	}
	if err := service.appointments.Create(ctx, appt); err != nil {
		return nil, err
	}

	if err := service.reminders.AppointmentCreated(ctx, appt.ID); err != nil {
		logrus.WithError(err).Warnf("[APPOINTMENT] Booked %s but could not schedule reminders", appt.ID)
	}
	return appt, nil
}

func (service *serviceAppointment) Reschedule(ctx context.Context, request domainAppointment.RescheduleRequest) (*apptDomain.Appointment, error) {
	if err := validations.ValidateRescheduleAppointment(ctx, request); err != nil {
		return nil, err
	}

	appt, err := service.appointments.GetByID(ctx, request.ID)
	if err != nil {
		return nil, err
	}

	appt.StartAt = request.StartAt.UTC()
	appt.EndAt = request.EndAt.UTC()
	if err := service.appointments.Update(ctx, appt); err != nil {
		return nil, err
	}

	if err := service.reminders.AppointmentRescheduled(ctx, appt.ID); err != nil {
		logrus.WithError(err).Warnf("[APPOINTMENT] Moved %s but could not re-plan reminders", appt.ID)
	}
	return appt, nil
}

func (service *serviceAppointment) Cancel(ctx context.Context, appointmentID string) error {
	appt, err := service.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}

	appt.Status = apptDomain.AppointmentStatusCancelled
	if err := service.appointments.Update(ctx, appt); err != nil {
		return err
	}
	return service.reminders.AppointmentCancelled(ctx, appointmentID)
}

// Complete marks the session done and refreshes the client's last visit,
// which feeds the last_visit campaign audience.
func (service *serviceAppointment) Complete(ctx context.Context, appointmentID string) error {
	appt, err := service.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}

	appt.Status = apptDomain.AppointmentStatusCompleted
	if err := service.appointments.Update(ctx, appt); err != nil {
		return err
	}

	client, err := service.clients.GetByID(ctx, appt.ClientID)
	if err != nil {
		return err
	}
	visit := appt.EndAt
	if client.LastVisit == nil || client.LastVisit.Before(visit) {
		client.LastVisit = &visit
		if err := service.clients.Update(ctx, client); err != nil {
			return err
		}
	}

	// A completed appointment needs no further reminders.
	return service.reminders.AppointmentCancelled(ctx, appointmentID)
}

func (service *serviceAppointment) Get(ctx context.Context, appointmentID string) (*apptDomain.Appointment, error) {
	return service.appointments.GetByID(ctx, appointmentID)
}

func (service *serviceAppointment) ListUpcoming(ctx context.Context) ([]*apptDomain.Appointment, error) {
	return service.appointments.ListUpcoming(ctx, timeNowUTC())
}
