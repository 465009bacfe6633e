package usecase

import (
	"context"

	apptDomain "github.com/serenease/notify/appointments/domain"
	domainReminder "github.com/serenease/notify/domains/reminder"
	"github.com/serenease/notify/notification/application"
	"github.com/serenease/notify/notification/domain"
	"github.com/serenease/notify/validations"
	"github.com/sirupsen/logrus"
)

type serviceReminder struct {
	appointments apptDomain.IAppointmentRepository
	scheduler    *application.DeliveryScheduler
	prefs        *application.PreferenceResolver
	engine       *application.Engine
}

func NewReminderService(
	appointments apptDomain.IAppointmentRepository,
	scheduler *application.DeliveryScheduler,
	prefs *application.PreferenceResolver,
	engine *application.Engine,
) domainReminder.IReminderUsecase {
	return &serviceReminder{
		appointments: appointments,
		scheduler:    scheduler,
		prefs:        prefs,
		engine:       engine,
	}
}

// reconcile recomputes the pending schedule of one appointment from its
// current start time and the effective rules, then wakes the engine so a
// near-term delivery is not stuck behind a long sleep.
func (service *serviceReminder) reconcile(ctx context.Context, appt *apptDomain.Appointment) error {
	rules, err := service.prefs.EffectiveRules(ctx, appt.ClientID)
	if err != nil {
		return err
	}

	if err := service.scheduler.Reconcile(ctx, appt.ID, appt.ClientID, appt.StartAt, rules); err != nil {
		return err
	}

	service.engine.Wake(ctx)
	return nil
}

func (service *serviceReminder) AppointmentCreated(ctx context.Context, appointmentID string) error {
	appt, err := service.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	return service.reconcile(ctx, appt)
}

func (service *serviceReminder) AppointmentRescheduled(ctx context.Context, appointmentID string) error {
	appt, err := service.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	return service.reconcile(ctx, appt)
}

func (service *serviceReminder) AppointmentCancelled(ctx context.Context, appointmentID string) error {
	if err := service.scheduler.CancelAll(ctx, appointmentID); err != nil {
		return err
	}
	service.engine.Wake(ctx)
	return nil
}

// PreferencesChanged re-plans every upcoming appointment the scope governs:
// one client for a client scope, the whole book for the global scope.
func (service *serviceReminder) PreferencesChanged(ctx context.Context, scope string) error {
	now := timeNowUTC()

	var affected []*apptDomain.Appointment
	var err error
	if scope == domain.PreferenceScopeGlobal {
		affected, err = service.appointments.ListUpcoming(ctx, now)
	} else {
		affected, err = service.appointments.ListUpcomingByClient(ctx, scope, now)
	}
	if err != nil {
		return err
	}

	for _, appt := range affected {
		if err := service.reconcile(ctx, appt); err != nil {
			logrus.WithError(err).Warnf("[REMINDER] Could not reconcile appointment %s after preference change", appt.ID)
		}
	}
	logrus.Infof("[REMINDER] Preference change on scope %s reconciled %d appointments", scope, len(affected))
	return nil
}

func (service *serviceReminder) DeliveryHistory(ctx context.Context, appointmentID string) ([]*domain.ScheduledDelivery, error) {
	if _, err := service.appointments.GetByID(ctx, appointmentID); err != nil {
		return nil, err
	}
	return service.scheduler.HistoryByAppointment(ctx, appointmentID)
}

func (service *serviceReminder) MarkDelivered(ctx context.Context, request domainReminder.ReceiptRequest) error {
	if err := validations.ValidateReceipt(ctx, request); err != nil {
		return err
	}
	return service.scheduler.MarkDelivered(ctx, request.DeliveryID)
}

func (service *serviceReminder) MarkOpened(ctx context.Context, request domainReminder.ReceiptRequest) error {
	if err := validations.ValidateReceipt(ctx, request); err != nil {
		return err
	}
	return service.scheduler.MarkOpened(ctx, request.DeliveryID)
}
