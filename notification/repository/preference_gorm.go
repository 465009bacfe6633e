package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/serenease/notify/notification/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type preferenceModel struct {
	Scope        string    `gorm:"primaryKey"`
	Rules        string    `gorm:"type:text;default:'[]'"` // JSON
	EmailEnabled bool      `gorm:"default:true"`
	SMSEnabled   bool      `gorm:"default:true"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (preferenceModel) TableName() string {
	return "notification_preferences"
}

type PreferenceGormRepository struct {
	db *gorm.DB
}

func NewPreferenceGormRepository(db *gorm.DB) *PreferenceGormRepository {
	return &PreferenceGormRepository{db: db}
}

func (r *PreferenceGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&preferenceModel{})
}

func (r *PreferenceGormRepository) Upsert(ctx context.Context, prefs *domain.NotificationPreferences) error {
	prefs.UpdatedAt = time.Now().UTC()

	rules, err := json.Marshal(prefs.Rules)
	if err != nil {
		return err
	}

	model := preferenceModel{
		Scope:        prefs.Scope,
		Rules:        string(rules),
		EmailEnabled: prefs.EmailEnabled,
		SMSEnabled:   prefs.SMSEnabled,
		UpdatedAt:    prefs.UpdatedAt,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scope"}},
		UpdateAll: true,
	}).Create(&model).Error
}

func (r *PreferenceGormRepository) GetByScope(ctx context.Context, scope string) (*domain.NotificationPreferences, error) {
	var m preferenceModel
	if err := r.db.WithContext(ctx).First(&m, "scope = ?", scope).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrPreferencesNotFound
		}
		return nil, err
	}

	var rules []domain.ReminderRule
	if m.Rules != "" {
		if err := json.Unmarshal([]byte(m.Rules), &rules); err != nil {
			return nil, err
		}
	}

	return &domain.NotificationPreferences{
		Scope:        m.Scope,
		Rules:        rules,
		EmailEnabled: m.EmailEnabled,
		SMSEnabled:   m.SMSEnabled,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}

func (r *PreferenceGormRepository) DeleteScope(ctx context.Context, scope string) error {
	result := r.db.WithContext(ctx).Delete(&preferenceModel{}, "scope = ?", scope)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrPreferencesNotFound
	}
	return nil
}
