package application

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	apptDomain "github.com/serenease/notify/appointments/domain"
	clientsDomain "github.com/serenease/notify/clients/domain"
	"github.com/serenease/notify/notification/domain"
)

// In-memory fakes mirroring the conditional-update semantics of the gorm
// repositories, so the application layer is tested against the same contract.

type memDeliveryRepo struct {
	mu         sync.Mutex
	rows       map[string]*domain.ScheduledDelivery
	activeKeys map[string]string // idempotency key -> delivery id
	seq        int
	order      map[string]int // insertion order for FIFO tie-break
}

func newMemDeliveryRepo() *memDeliveryRepo {
	return &memDeliveryRepo{
		rows:       make(map[string]*domain.ScheduledDelivery),
		activeKeys: make(map[string]string),
		order:      make(map[string]int),
	}
}

func (r *memDeliveryRepo) InitSchema(ctx context.Context) error { return nil }

func (r *memDeliveryRepo) Create(ctx context.Context, d *domain.ScheduledDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := d.IdempotencyKey()
	if _, taken := r.activeKeys[key]; taken {
		return domain.ErrDuplicateDelivery
	}

	if d.ID == "" {
		r.seq++
		d.ID = fmt.Sprintf("dlv-%d", r.seq)
	}
	if d.Status == "" {
		d.Status = domain.DeliveryStatusPending
	}
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	cp := *d
	r.rows[d.ID] = &cp
	r.activeKeys[key] = d.ID
	r.seq++
	r.order[d.ID] = r.seq
	return nil
}

func (r *memDeliveryRepo) GetByID(ctx context.Context, id string) (*domain.ScheduledDelivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrDeliveryNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *memDeliveryRepo) ListDue(ctx context.Context, now time.Time) ([]*domain.ScheduledDelivery, error) {
	return r.filter(func(d *domain.ScheduledDelivery) bool {
		return d.Status == domain.DeliveryStatusPending && !d.SendAt.After(now)
	}), nil
}

func (r *memDeliveryRepo) NextPendingAt(ctx context.Context) (time.Time, error) {
	pending := r.filter(func(d *domain.ScheduledDelivery) bool {
		return d.Status == domain.DeliveryStatusPending
	})
	if len(pending) == 0 {
		return time.Time{}, nil
	}
	return pending[0].SendAt, nil
}

func (r *memDeliveryRepo) ListPendingByAppointment(ctx context.Context, appointmentID string) ([]*domain.ScheduledDelivery, error) {
	return r.filter(func(d *domain.ScheduledDelivery) bool {
		return d.AppointmentID == appointmentID && d.Status == domain.DeliveryStatusPending
	}), nil
}

func (r *memDeliveryRepo) ListPendingByCampaign(ctx context.Context, campaignID string) ([]*domain.ScheduledDelivery, error) {
	return r.filter(func(d *domain.ScheduledDelivery) bool {
		return d.CampaignID == campaignID && d.Status == domain.DeliveryStatusPending
	}), nil
}

func (r *memDeliveryRepo) ListByAppointment(ctx context.Context, appointmentID string) ([]*domain.ScheduledDelivery, error) {
	return r.filter(func(d *domain.ScheduledDelivery) bool {
		return d.AppointmentID == appointmentID
	}), nil
}

func (r *memDeliveryRepo) ListByCampaign(ctx context.Context, campaignID string) ([]*domain.ScheduledDelivery, error) {
	return r.filter(func(d *domain.ScheduledDelivery) bool {
		return d.CampaignID == campaignID
	}), nil
}

func (r *memDeliveryRepo) filter(keep func(*domain.ScheduledDelivery) bool) []*domain.ScheduledDelivery {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.ScheduledDelivery
	for _, row := range r.rows {
		if keep(row) {
			cp := *row
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SendAt.Equal(out[j].SendAt) {
			return out[i].SendAt.Before(out[j].SendAt)
		}
		return r.order[out[i].ID] < r.order[out[j].ID]
	})
	return out
}

func (r *memDeliveryRepo) transition(id string, from, to domain.DeliveryStatus, mutate func(*domain.ScheduledDelivery)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return domain.ErrDeliveryNotFound
	}
	if row.Status != from {
		return domain.ErrInvalidTransition
	}
	row.Status = to
	row.UpdatedAt = time.Now().UTC()
	if mutate != nil {
		mutate(row)
	}
	if to == domain.DeliveryStatusCancelled {
		delete(r.activeKeys, row.IdempotencyKey())
	}
	return nil
}

func (r *memDeliveryRepo) Claim(ctx context.Context, id string) error {
	return r.transition(id, domain.DeliveryStatusPending, domain.DeliveryStatusClaimed, nil)
}

func (r *memDeliveryRepo) Release(ctx context.Context, id string, sendAt time.Time, attempts int) error {
	return r.transition(id, domain.DeliveryStatusClaimed, domain.DeliveryStatusPending, func(d *domain.ScheduledDelivery) {
		d.SendAt = sendAt
		d.Attempts = attempts
	})
}

func (r *memDeliveryRepo) MarkSent(ctx context.Context, id string, attempts int) error {
	return r.transition(id, domain.DeliveryStatusClaimed, domain.DeliveryStatusSent, func(d *domain.ScheduledDelivery) {
		d.Attempts = attempts
	})
}

func (r *memDeliveryRepo) MarkFailed(ctx context.Context, id string, lastError string, attempts int) error {
	return r.transition(id, domain.DeliveryStatusClaimed, domain.DeliveryStatusFailed, func(d *domain.ScheduledDelivery) {
		d.LastError = lastError
		d.Attempts = attempts
	})
}

func (r *memDeliveryRepo) Cancel(ctx context.Context, id string) error {
	return r.transition(id, domain.DeliveryStatusPending, domain.DeliveryStatusCancelled, nil)
}

func (r *memDeliveryRepo) CancelClaimed(ctx context.Context, id string) error {
	return r.transition(id, domain.DeliveryStatusClaimed, domain.DeliveryStatusCancelled, nil)
}

func (r *memDeliveryRepo) MarkDelivered(ctx context.Context, id string) error {
	return r.transition(id, domain.DeliveryStatusSent, domain.DeliveryStatusDelivered, nil)
}

func (r *memDeliveryRepo) MarkOpened(ctx context.Context, id string) error {
	return r.transition(id, domain.DeliveryStatusDelivered, domain.DeliveryStatusOpened, nil)
}

func (r *memDeliveryRepo) UpdatePayload(ctx context.Context, id, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return domain.ErrDeliveryNotFound
	}
	row.Subject = subject
	row.Body = body
	return nil
}

// --- preference repo fake ---

type memPreferenceRepo struct {
	mu   sync.Mutex
	rows map[string]*domain.NotificationPreferences
}

func newMemPreferenceRepo() *memPreferenceRepo {
	return &memPreferenceRepo{rows: make(map[string]*domain.NotificationPreferences)}
}

func (r *memPreferenceRepo) InitSchema(ctx context.Context) error { return nil }

func (r *memPreferenceRepo) Upsert(ctx context.Context, prefs *domain.NotificationPreferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *prefs
	r.rows[prefs.Scope] = &cp
	return nil
}

func (r *memPreferenceRepo) GetByScope(ctx context.Context, scope string) (*domain.NotificationPreferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[scope]
	if !ok {
		return nil, domain.ErrPreferencesNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *memPreferenceRepo) DeleteScope(ctx context.Context, scope string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[scope]; !ok {
		return domain.ErrPreferencesNotFound
	}
	delete(r.rows, scope)
	return nil
}

// --- template repo fake ---

type memTemplateRepo struct {
	mu   sync.Mutex
	rows map[string]*domain.MessageTemplate
}

func newMemTemplateRepo() *memTemplateRepo {
	return &memTemplateRepo{rows: make(map[string]*domain.MessageTemplate)}
}

func (r *memTemplateRepo) InitSchema(ctx context.Context) error { return nil }

func (r *memTemplateRepo) Create(ctx context.Context, tpl *domain.MessageTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl.ID == "" {
		tpl.ID = "tpl-" + tpl.Name
	}
	cp := *tpl
	r.rows[tpl.ID] = &cp
	return nil
}

func (r *memTemplateRepo) Update(ctx context.Context, tpl *domain.MessageTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[tpl.ID]; !ok {
		return domain.ErrTemplateNotFound
	}
	cp := *tpl
	r.rows[tpl.ID] = &cp
	return nil
}

func (r *memTemplateRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return domain.ErrTemplateNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memTemplateRepo) GetByID(ctx context.Context, id string) (*domain.MessageTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *memTemplateRepo) FindByName(ctx context.Context, name string) (*domain.MessageTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Name == name {
			cp := *row
			return &cp, nil
		}
	}
	return nil, domain.ErrTemplateNotFound
}

func (r *memTemplateRepo) List(ctx context.Context) ([]*domain.MessageTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.MessageTemplate
	for _, row := range r.rows {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

// --- campaign repo fake ---

type memCampaignRepo struct {
	mu   sync.Mutex
	rows map[string]*domain.Campaign
}

func newMemCampaignRepo() *memCampaignRepo {
	return &memCampaignRepo{rows: make(map[string]*domain.Campaign)}
}

func (r *memCampaignRepo) InitSchema(ctx context.Context) error { return nil }

func (r *memCampaignRepo) Create(ctx context.Context, c *domain.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = "camp-" + c.Name
	}
	if c.Status == "" {
		c.Status = domain.CampaignStatusDraft
	}
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *memCampaignRepo) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrCampaignNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *memCampaignRepo) List(ctx context.Context) ([]*domain.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Campaign
	for _, row := range r.rows {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memCampaignRepo) UpdateStatus(ctx context.Context, id string, from, to domain.CampaignStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return domain.ErrCampaignNotFound
	}
	if row.Status != from {
		return domain.ErrInvalidTransition
	}
	row.Status = to
	return nil
}

// --- client repo fake ---

type memClientRepo struct {
	mu   sync.Mutex
	rows map[string]*clientsDomain.Client
}

func newMemClientRepo(clients ...*clientsDomain.Client) *memClientRepo {
	r := &memClientRepo{rows: make(map[string]*clientsDomain.Client)}
	for _, c := range clients {
		cp := *c
		r.rows[c.ID] = &cp
	}
	return r
}

func (r *memClientRepo) InitSchema(ctx context.Context) error { return nil }

func (r *memClientRepo) Create(ctx context.Context, c *clientsDomain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *memClientRepo) Update(ctx context.Context, c *clientsDomain.Client) error {
	return r.Create(ctx, c)
}

func (r *memClientRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *memClientRepo) GetByID(ctx context.Context, id string) (*clientsDomain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, clientsDomain.ErrClientNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *memClientRepo) ListActive(ctx context.Context) ([]*clientsDomain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*clientsDomain.Client
	for _, row := range r.rows {
		if row.Active {
			cp := *row
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memClientRepo) List(ctx context.Context) ([]*clientsDomain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*clientsDomain.Client
	for _, row := range r.rows {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

// --- appointment repo fake ---

type memAppointmentRepo struct {
	mu   sync.Mutex
	rows map[string]*apptDomain.Appointment
}

func newMemAppointmentRepo(appts ...*apptDomain.Appointment) *memAppointmentRepo {
	r := &memAppointmentRepo{rows: make(map[string]*apptDomain.Appointment)}
	for _, a := range appts {
		cp := *a
		r.rows[a.ID] = &cp
	}
	return r
}

func (r *memAppointmentRepo) InitSchema(ctx context.Context) error { return nil }

func (r *memAppointmentRepo) Create(ctx context.Context, a *apptDomain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.rows[a.ID] = &cp
	return nil
}

func (r *memAppointmentRepo) Update(ctx context.Context, a *apptDomain.Appointment) error {
	return r.Create(ctx, a)
}

func (r *memAppointmentRepo) GetByID(ctx context.Context, id string) (*apptDomain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, apptDomain.ErrAppointmentNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *memAppointmentRepo) ListUpcomingByClient(ctx context.Context, clientID string, after time.Time) ([]*apptDomain.Appointment, error) {
	return r.upcoming(func(a *apptDomain.Appointment) bool {
		return a.ClientID == clientID && a.StartAt.After(after) && a.Status == apptDomain.AppointmentStatusBooked
	}), nil
}

func (r *memAppointmentRepo) ListUpcoming(ctx context.Context, after time.Time) ([]*apptDomain.Appointment, error) {
	return r.upcoming(func(a *apptDomain.Appointment) bool {
		return a.StartAt.After(after) && a.Status == apptDomain.AppointmentStatusBooked
	}), nil
}

func (r *memAppointmentRepo) upcoming(keep func(*apptDomain.Appointment) bool) []*apptDomain.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*apptDomain.Appointment
	for _, row := range r.rows {
		if keep(row) {
			cp := *row
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out
}

// --- channel adapter fake ---

type fakeAdapter struct {
	mu      sync.Mutex
	channel domain.Channel
	sent    []domain.Outbound
	respond func(msg domain.Outbound) error
}

func newFakeAdapter(channel domain.Channel) *fakeAdapter {
	return &fakeAdapter{channel: channel}
}

func (a *fakeAdapter) Channel() domain.Channel { return a.channel }

func (a *fakeAdapter) Send(ctx context.Context, msg domain.Outbound) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.respond != nil {
		if err := a.respond(msg); err != nil {
			return err
		}
	}
	a.sent = append(a.sent, msg)
	return nil
}

func (a *fakeAdapter) sentMessages() []domain.Outbound {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.Outbound, len(a.sent))
	copy(out, a.sent)
	return out
}
