package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/serenease/notify/notification/domain"
	"gorm.io/gorm"
)

type campaignModel struct {
	ID            string `gorm:"primaryKey"`
	Name          string `gorm:"not null"`
	TemplateID    string `gorm:"index:idx_campaigns_template;not null"`
	AudienceKind  string `gorm:"not null"`
	AudienceDays  int
	AudienceMonth int
	ScheduledAt   *time.Time
	Status        string    `gorm:"index:idx_campaigns_status;default:'draft'"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (campaignModel) TableName() string {
	return "campaigns"
}

type CampaignGormRepository struct {
	db *gorm.DB
}

func NewCampaignGormRepository(db *gorm.DB) *CampaignGormRepository {
	return &CampaignGormRepository{db: db}
}

func (r *CampaignGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&campaignModel{})
}

func (r *CampaignGormRepository) Create(ctx context.Context, campaign *domain.Campaign) error {
	if campaign.ID == "" {
		campaign.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if campaign.CreatedAt.IsZero() {
		campaign.CreatedAt = now
	}
	campaign.UpdatedAt = now
	if campaign.Status == "" {
		campaign.Status = domain.CampaignStatusDraft
	}

	return r.db.WithContext(ctx).Create(toCampaignModel(campaign)).Error
}

func (r *CampaignGormRepository) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	var m campaignModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrCampaignNotFound
		}
		return nil, err
	}
	return fromCampaignModel(m), nil
}

func (r *CampaignGormRepository) List(ctx context.Context) ([]*domain.Campaign, error) {
	var models []campaignModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	campaigns := make([]*domain.Campaign, 0, len(models))
	for _, m := range models {
		campaigns = append(campaigns, fromCampaignModel(m))
	}
	return campaigns, nil
}

func (r *CampaignGormRepository) UpdateStatus(ctx context.Context, id string, from, to domain.CampaignStatus) error {
	result := r.db.WithContext(ctx).Model(&campaignModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{"status": string(to), "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&campaignModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrCampaignNotFound
		}
		return domain.ErrInvalidTransition
	}
	return nil
}

func toCampaignModel(c *domain.Campaign) *campaignModel {
	return &campaignModel{
		ID:            c.ID,
		Name:          c.Name,
		TemplateID:    c.TemplateID,
		AudienceKind:  string(c.Audience.Kind),
		AudienceDays:  c.Audience.Days,
		AudienceMonth: int(c.Audience.Month),
		ScheduledAt:   c.ScheduledAt,
		Status:        string(c.Status),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func fromCampaignModel(m campaignModel) *domain.Campaign {
	return &domain.Campaign{
		ID:         m.ID,
		Name:       m.Name,
		TemplateID: m.TemplateID,
		Audience: domain.AudienceFilter{
			Kind:  domain.AudienceKind(m.AudienceKind),
			Days:  m.AudienceDays,
			Month: time.Month(m.AudienceMonth),
		},
		ScheduledAt: m.ScheduledAt,
		Status:      domain.CampaignStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
