package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apptDomain "github.com/serenease/notify/appointments/domain"
	clientsDomain "github.com/serenease/notify/clients/domain"
	"github.com/serenease/notify/notification/domain"
	"github.com/serenease/notify/pkg/render"
	"github.com/sirupsen/logrus"
)

// Default reminder template names. When the practice has not created one,
// the dispatcher falls back to a built-in text.
const (
	TemplateNameReminderEmail = "appointment-reminder-email"
	TemplateNameReminderSMS   = "appointment-reminder-sms"
)

const (
	defaultReminderSubject = "Appointment reminder"
	defaultReminderBody    = "Hi {{clientName}}, this is a reminder of your appointment on {{appointmentDate}} at {{appointmentTime}}."
	smsSoftLimit           = 160
)

// DispatchPolicy is the retry/backoff/timeout knob set.
type DispatchPolicy struct {
	MaxRetries      int
	BackoffBase     time.Duration
	BackoffMax      time.Duration
	DispatchTimeout time.Duration
	DryRun          bool
}

// AdapterRegistry maps channels to their transport adapters.
type AdapterRegistry struct {
	mu       sync.RWMutex
	adapters map[domain.Channel]domain.ChannelAdapter
}

func NewAdapterRegistry() *AdapterRegistry {
	return &AdapterRegistry{adapters: make(map[domain.Channel]domain.ChannelAdapter)}
}

func (r *AdapterRegistry) Register(adapter domain.ChannelAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.Channel()] = adapter
}

func (r *AdapterRegistry) Get(channel domain.Channel) (domain.ChannelAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[channel]
	return adapter, ok
}

// Dispatcher executes one claimed delivery end to end: render, send,
// classify, record. It never returns transport errors to the caller; every
// outcome lands on the delivery row.
type Dispatcher struct {
	deliveries   domain.IDeliveryRepository
	templates    domain.ITemplateRepository
	clients      clientsDomain.IClientRepository
	appointments apptDomain.IAppointmentRepository
	prefs        *PreferenceResolver
	adapters     *AdapterRegistry
	policy       DispatchPolicy
}

func NewDispatcher(
	deliveries domain.IDeliveryRepository,
	templates domain.ITemplateRepository,
	clients clientsDomain.IClientRepository,
	appointments apptDomain.IAppointmentRepository,
	prefs *PreferenceResolver,
	adapters *AdapterRegistry,
	policy DispatchPolicy,
) *Dispatcher {
	if policy.MaxRetries <= 0 {
		policy.MaxRetries = 3
	}
	if policy.BackoffBase <= 0 {
		policy.BackoffBase = time.Minute
	}
	if policy.BackoffMax <= 0 {
		policy.BackoffMax = time.Hour
	}
	if policy.DispatchTimeout <= 0 {
		policy.DispatchTimeout = 15 * time.Second
	}
	return &Dispatcher{
		deliveries:   deliveries,
		templates:    templates,
		clients:      clients,
		appointments: appointments,
		prefs:        prefs,
		adapters:     adapters,
		policy:       policy,
	}
}

// Dispatch processes a delivery that the caller has already claimed.
func (d *Dispatcher) Dispatch(ctx context.Context, delivery *domain.ScheduledDelivery) {
	attempts := delivery.Attempts + 1

	client, err := d.clients.GetByID(ctx, delivery.ClientID)
	if err != nil {
		if errors.Is(err, clientsDomain.ErrClientNotFound) {
			d.fail(ctx, delivery, attempts, fmt.Sprintf("client lookup: %v", err))
		} else {
			d.retryOrFail(ctx, delivery, attempts, fmt.Sprintf("client lookup: %v", err))
		}
		return
	}

	// Preferences may have changed since scheduling; an opted-out channel
	// cancels the delivery instead of sending.
	prefs, err := d.prefs.Effective(ctx, delivery.ClientID)
	if err != nil {
		d.retryOrFail(ctx, delivery, attempts, fmt.Sprintf("preference lookup: %v", err))
		return
	}
	if !prefs.ChannelEnabled(delivery.Channel) {
		if err := d.deliveries.CancelClaimed(ctx, delivery.ID); err != nil {
			logrus.WithError(err).Warnf("[DISPATCHER] Could not cancel opted-out delivery %s", delivery.ID)
		} else {
			logrus.Infof("[DISPATCHER] Cancelled delivery %s, channel %s opted out", delivery.ID, delivery.Channel)
		}
		return
	}

	contact := client.ContactFor(string(delivery.Channel))
	if contact == "" {
		d.fail(ctx, delivery, attempts, fmt.Sprintf("client %s has no %s contact", client.ID, delivery.Channel))
		return
	}

	subject, body, err := d.payload(ctx, delivery, client)
	if err != nil {
		d.fail(ctx, delivery, attempts, err.Error())
		return
	}

	if delivery.Channel == domain.ChannelSMS && len(body) > smsSoftLimit {
		logrus.Warnf("[DISPATCHER] SMS body for delivery %s is %d chars (soft limit %d), sending unmodified",
			delivery.ID, len(body), smsSoftLimit)
	}

	if d.policy.DryRun {
		logrus.Infof("[DISPATCHER] Dry run: would send %s to %s (%s)", delivery.ID, contact, delivery.Channel)
		d.markSent(ctx, delivery, attempts)
		return
	}

	adapter, ok := d.adapters.Get(delivery.Channel)
	if !ok {
		d.fail(ctx, delivery, attempts, domain.ErrNoAdapterForChannel.Error())
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.policy.DispatchTimeout)
	defer cancel()

	err = adapter.Send(sendCtx, domain.Outbound{Contact: contact, Subject: subject, Body: body})
	switch {
	case err == nil:
		d.markSent(ctx, delivery, attempts)
	case domain.IsPermanent(err):
		d.fail(ctx, delivery, attempts, err.Error())
	default:
		// Timeouts and anything unclassified count as transient.
		d.retryOrFail(ctx, delivery, attempts, err.Error())
	}
}

// payload produces the subject/body to send. Reminders render here, at
// dispatch time; campaign rows were rendered by the planner.
func (d *Dispatcher) payload(ctx context.Context, delivery *domain.ScheduledDelivery, client *clientsDomain.Client) (string, string, error) {
	if delivery.Kind == domain.SubjectCampaign {
		if delivery.Body == "" {
			return "", "", fmt.Errorf("campaign delivery %s has empty payload", delivery.ID)
		}
		return delivery.Subject, delivery.Body, nil
	}

	appt, err := d.appointments.GetByID(ctx, delivery.AppointmentID)
	if err != nil {
		return "", "", fmt.Errorf("appointment lookup: %v", err)
	}

	subjectTpl, bodyTpl := defaultReminderSubject, defaultReminderBody
	name := TemplateNameReminderEmail
	if delivery.Channel == domain.ChannelSMS {
		name = TemplateNameReminderSMS
	}
	if tpl, err := d.templates.FindByName(ctx, name); err == nil {
		subjectTpl, bodyTpl = tpl.Subject, tpl.Body
	} else if err != domain.ErrTemplateNotFound {
		return "", "", fmt.Errorf("template lookup: %v", err)
	}

	bindings := ReminderBindings(client, appt)
	subject := render.Render(subjectTpl, bindings)
	body := render.Render(bodyTpl, bindings)

	if leftover := render.UnresolvedTokens(body); len(leftover) > 0 {
		logrus.Warnf("[DISPATCHER] Delivery %s rendered with unresolved tokens %v", delivery.ID, leftover)
	}

	if err := d.deliveries.UpdatePayload(ctx, delivery.ID, subject, body); err != nil {
		logrus.WithError(err).Warnf("[DISPATCHER] Could not persist payload for %s", delivery.ID)
	}
	return subject, body, nil
}

func (d *Dispatcher) markSent(ctx context.Context, delivery *domain.ScheduledDelivery, attempts int) {
	if err := d.deliveries.MarkSent(ctx, delivery.ID, attempts); err != nil {
		logrus.WithError(err).Errorf("[DISPATCHER] Could not mark delivery %s sent", delivery.ID)
		return
	}
	logrus.Infof("[DISPATCHER] Sent delivery %s (%s, attempt %d)", delivery.ID, delivery.Channel, attempts)
}

// fail is the permanent path: no retry regardless of attempt count.
func (d *Dispatcher) fail(ctx context.Context, delivery *domain.ScheduledDelivery, attempts int, reason string) {
	if err := d.deliveries.MarkFailed(ctx, delivery.ID, reason, attempts); err != nil {
		logrus.WithError(err).Errorf("[DISPATCHER] Could not mark delivery %s failed", delivery.ID)
		return
	}
	logrus.Warnf("[DISPATCHER] Delivery %s failed permanently: %s", delivery.ID, reason)
}

// retryOrFail is the transient path: exponential backoff until the attempt
// budget runs out.
func (d *Dispatcher) retryOrFail(ctx context.Context, delivery *domain.ScheduledDelivery, attempts int, reason string) {
	if attempts >= d.policy.MaxRetries {
		d.fail(ctx, delivery, attempts, reason)
		return
	}

	delay := d.backoff(attempts)
	nextAt := time.Now().UTC().Add(delay)
	if err := d.deliveries.Release(ctx, delivery.ID, nextAt, attempts); err != nil {
		logrus.WithError(err).Errorf("[DISPATCHER] Could not release delivery %s for retry", delivery.ID)
		return
	}
	logrus.Infof("[DISPATCHER] Delivery %s attempt %d failed (%s), retrying in %s", delivery.ID, attempts, reason, delay)
}

func (d *Dispatcher) backoff(attempts int) time.Duration {
	delay := d.policy.BackoffBase
	for i := 0; i < attempts; i++ {
		delay *= 2
		if delay >= d.policy.BackoffMax {
			return d.policy.BackoffMax
		}
	}
	return delay
}
