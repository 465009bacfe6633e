package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/serenease/notify/notification/domain"
	"gorm.io/gorm"
)

// --- Persistence Model ---

// deliveryModel keeps a dedupe_key column with a plain unique index. Active
// rows (anything not cancelled) hold the raw idempotency key; Cancel rewrites
// the key with a row-unique suffix so the logical slot is freed for
// rescheduling while the historical record stays queryable.
type deliveryModel struct {
	ID                string `gorm:"primaryKey"`
	Kind              string `gorm:"not null"`
	AppointmentID     string `gorm:"index:idx_deliveries_appointment"`
	RuleOffsetSeconds int64
	CampaignID        string `gorm:"index:idx_deliveries_campaign"`
	RecipientID       string
	ClientID          string    `gorm:"index:idx_deliveries_client"`
	Channel           string    `gorm:"not null"`
	SendAt            time.Time `gorm:"index:idx_deliveries_due,priority:2;not null"`
	Status            string    `gorm:"index:idx_deliveries_due,priority:1;not null"`
	Attempts          int       `gorm:"default:0"`
	LastError         string    `gorm:"type:text"`
	Subject           string
	Body              string    `gorm:"type:text"`
	DedupeKey         string    `gorm:"uniqueIndex:idx_deliveries_dedupe;not null"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

func (deliveryModel) TableName() string {
	return "scheduled_deliveries"
}

// --- Repository Implementation ---

type DeliveryGormRepository struct {
	db *gorm.DB
}

func NewDeliveryGormRepository(db *gorm.DB) *DeliveryGormRepository {
	return &DeliveryGormRepository{db: db}
}

func (r *DeliveryGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&deliveryModel{})
}

func (r *DeliveryGormRepository) Create(ctx context.Context, delivery *domain.ScheduledDelivery) error {
	if delivery.ID == "" {
		delivery.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if delivery.CreatedAt.IsZero() {
		delivery.CreatedAt = now
	}
	delivery.UpdatedAt = now
	if delivery.Status == "" {
		delivery.Status = domain.DeliveryStatusPending
	}

	model := toDeliveryModel(delivery)
	result := r.db.WithContext(ctx).Create(&model)
	if result.Error != nil {
		if strings.Contains(result.Error.Error(), "UNIQUE constraint failed") || strings.Contains(result.Error.Error(), "duplicate key value") {
			return domain.ErrDuplicateDelivery
		}
		return result.Error
	}
	return nil
}

func (r *DeliveryGormRepository) GetByID(ctx context.Context, id string) (*domain.ScheduledDelivery, error) {
	var m deliveryModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrDeliveryNotFound
		}
		return nil, err
	}
	return fromDeliveryModel(m), nil
}

func (r *DeliveryGormRepository) ListDue(ctx context.Context, now time.Time) ([]*domain.ScheduledDelivery, error) {
	var models []deliveryModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND send_at <= ?", string(domain.DeliveryStatusPending), now).
		Order("send_at ASC, created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromDeliveryModels(models), nil
}

func (r *DeliveryGormRepository) NextPendingAt(ctx context.Context) (time.Time, error) {
	var m deliveryModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.DeliveryStatusPending)).
		Order("send_at ASC").
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return m.SendAt, nil
}

func (r *DeliveryGormRepository) ListPendingByAppointment(ctx context.Context, appointmentID string) ([]*domain.ScheduledDelivery, error) {
	return r.list(ctx, "appointment_id = ? AND status = ?", appointmentID, string(domain.DeliveryStatusPending))
}

func (r *DeliveryGormRepository) ListPendingByCampaign(ctx context.Context, campaignID string) ([]*domain.ScheduledDelivery, error) {
	return r.list(ctx, "campaign_id = ? AND status = ?", campaignID, string(domain.DeliveryStatusPending))
}

func (r *DeliveryGormRepository) ListByAppointment(ctx context.Context, appointmentID string) ([]*domain.ScheduledDelivery, error) {
	return r.list(ctx, "appointment_id = ?", appointmentID)
}

func (r *DeliveryGormRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*domain.ScheduledDelivery, error) {
	return r.list(ctx, "campaign_id = ?", campaignID)
}

func (r *DeliveryGormRepository) list(ctx context.Context, query string, args ...any) ([]*domain.ScheduledDelivery, error) {
	var models []deliveryModel
	err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("send_at ASC, created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromDeliveryModels(models), nil
}

// --- Conditional status updates ---

func (r *DeliveryGormRepository) Claim(ctx context.Context, id string) error {
	return r.transition(ctx, id, domain.DeliveryStatusPending, map[string]any{
		"status": string(domain.DeliveryStatusClaimed),
	})
}

func (r *DeliveryGormRepository) Release(ctx context.Context, id string, sendAt time.Time, attempts int) error {
	return r.transition(ctx, id, domain.DeliveryStatusClaimed, map[string]any{
		"status":   string(domain.DeliveryStatusPending),
		"send_at":  sendAt,
		"attempts": attempts,
	})
}

func (r *DeliveryGormRepository) MarkSent(ctx context.Context, id string, attempts int) error {
	return r.transition(ctx, id, domain.DeliveryStatusClaimed, map[string]any{
		"status":   string(domain.DeliveryStatusSent),
		"attempts": attempts,
	})
}

func (r *DeliveryGormRepository) MarkFailed(ctx context.Context, id string, lastError string, attempts int) error {
	return r.transition(ctx, id, domain.DeliveryStatusClaimed, map[string]any{
		"status":     string(domain.DeliveryStatusFailed),
		"last_error": lastError,
		"attempts":   attempts,
	})
}

func (r *DeliveryGormRepository) Cancel(ctx context.Context, id string) error {
	// Freeing the dedupe key is what lets a rescheduled appointment re-create
	// the same logical reminder.
	return r.transition(ctx, id, domain.DeliveryStatusPending, map[string]any{
		"status":     string(domain.DeliveryStatusCancelled),
		"dedupe_key": gorm.Expr("dedupe_key || ':cancelled:' || id"),
	})
}

func (r *DeliveryGormRepository) CancelClaimed(ctx context.Context, id string) error {
	return r.transition(ctx, id, domain.DeliveryStatusClaimed, map[string]any{
		"status":     string(domain.DeliveryStatusCancelled),
		"dedupe_key": gorm.Expr("dedupe_key || ':cancelled:' || id"),
	})
}

func (r *DeliveryGormRepository) MarkDelivered(ctx context.Context, id string) error {
	return r.transition(ctx, id, domain.DeliveryStatusSent, map[string]any{
		"status": string(domain.DeliveryStatusDelivered),
	})
}

func (r *DeliveryGormRepository) MarkOpened(ctx context.Context, id string) error {
	return r.transition(ctx, id, domain.DeliveryStatusDelivered, map[string]any{
		"status": string(domain.DeliveryStatusOpened),
	})
}

func (r *DeliveryGormRepository) UpdatePayload(ctx context.Context, id, subject, body string) error {
	result := r.db.WithContext(ctx).Model(&deliveryModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"subject": subject, "body": body, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrDeliveryNotFound
	}
	return nil
}

// transition performs the single-row compare-and-swap every status change
// goes through: the WHERE clause on the expected status is the atomicity
// guarantee, no row lock needed.
func (r *DeliveryGormRepository) transition(ctx context.Context, id string, from domain.DeliveryStatus, updates map[string]any) error {
	updates["updated_at"] = time.Now().UTC()

	result := r.db.WithContext(ctx).Model(&deliveryModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&deliveryModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrDeliveryNotFound
		}
		return domain.ErrInvalidTransition
	}
	return nil
}

// --- Mapping ---

func toDeliveryModel(d *domain.ScheduledDelivery) deliveryModel {
	return deliveryModel{
		ID:                d.ID,
		Kind:              string(d.Kind),
		AppointmentID:     d.AppointmentID,
		RuleOffsetSeconds: int64(d.RuleOffset.Seconds()),
		CampaignID:        d.CampaignID,
		RecipientID:       d.RecipientID,
		ClientID:          d.ClientID,
		Channel:           string(d.Channel),
		SendAt:            d.SendAt,
		Status:            string(d.Status),
		Attempts:          d.Attempts,
		LastError:         d.LastError,
		Subject:           d.Subject,
		Body:              d.Body,
		DedupeKey:         d.IdempotencyKey(),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func fromDeliveryModel(m deliveryModel) *domain.ScheduledDelivery {
	return &domain.ScheduledDelivery{
		ID:            m.ID,
		Kind:          domain.SubjectKind(m.Kind),
		AppointmentID: m.AppointmentID,
		RuleOffset:    time.Duration(m.RuleOffsetSeconds) * time.Second,
		CampaignID:    m.CampaignID,
		RecipientID:   m.RecipientID,
		ClientID:      m.ClientID,
		Channel:       domain.Channel(m.Channel),
		SendAt:        m.SendAt,
		Status:        domain.DeliveryStatus(m.Status),
		Attempts:      m.Attempts,
		LastError:     m.LastError,
		Subject:       m.Subject,
		Body:          m.Body,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func fromDeliveryModels(models []deliveryModel) []*domain.ScheduledDelivery {
	deliveries := make([]*domain.ScheduledDelivery, 0, len(models))
	for _, m := range models {
		deliveries = append(deliveries, fromDeliveryModel(m))
	}
	return deliveries
}
