package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/serenease/notify/notification/domain"
	"github.com/serenease/notify/pkg/render"
	"gorm.io/gorm"
)

type templateModel struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"index:idx_templates_name;not null"`
	Channel      string `gorm:"not null"`
	Subject      string
	Body         string    `gorm:"type:text;not null"`
	Placeholders string    `gorm:"type:text;default:'[]'"` // JSON
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (templateModel) TableName() string {
	return "message_templates"
}

type TemplateGormRepository struct {
	db *gorm.DB
}

func NewTemplateGormRepository(db *gorm.DB) *TemplateGormRepository {
	return &TemplateGormRepository{db: db}
}

func (r *TemplateGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&templateModel{})
}

func (r *TemplateGormRepository) Create(ctx context.Context, tpl *domain.MessageTemplate) error {
	if tpl.ID == "" {
		tpl.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = now
	}
	tpl.UpdatedAt = now
	refreshPlaceholders(tpl)

	model, err := toTemplateModel(tpl)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *TemplateGormRepository) Update(ctx context.Context, tpl *domain.MessageTemplate) error {
	tpl.UpdatedAt = time.Now().UTC()
	refreshPlaceholders(tpl)

	model, err := toTemplateModel(tpl)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&templateModel{}).Where("id = ?", tpl.ID).Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

func (r *TemplateGormRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&templateModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

func (r *TemplateGormRepository) GetByID(ctx context.Context, id string) (*domain.MessageTemplate, error) {
	var m templateModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, err
	}
	return fromTemplateModel(m)
}

func (r *TemplateGormRepository) FindByName(ctx context.Context, name string) (*domain.MessageTemplate, error) {
	var m templateModel
	if err := r.db.WithContext(ctx).First(&m, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, err
	}
	return fromTemplateModel(m)
}

func (r *TemplateGormRepository) List(ctx context.Context) ([]*domain.MessageTemplate, error) {
	var models []templateModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	templates := make([]*domain.MessageTemplate, 0, len(models))
	for _, m := range models {
		tpl, err := fromTemplateModel(m)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, nil
}

// refreshPlaceholders recomputes the placeholder list from subject + body so
// the stored list never drifts from the actual template text.
func refreshPlaceholders(tpl *domain.MessageTemplate) {
	tpl.Placeholders = render.Placeholders(tpl.Subject + " " + tpl.Body)
}

func toTemplateModel(t *domain.MessageTemplate) (templateModel, error) {
	placeholders, err := json.Marshal(t.Placeholders)
	if err != nil {
		return templateModel{}, err
	}
	return templateModel{
		ID:           t.ID,
		Name:         t.Name,
		Channel:      string(t.Channel),
		Subject:      t.Subject,
		Body:         t.Body,
		Placeholders: string(placeholders),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}, nil
}

func fromTemplateModel(m templateModel) (*domain.MessageTemplate, error) {
	var placeholders []string
	if m.Placeholders != "" {
		if err := json.Unmarshal([]byte(m.Placeholders), &placeholders); err != nil {
			return nil, err
		}
	}
	return &domain.MessageTemplate{
		ID:           m.ID,
		Name:         m.Name,
		Channel:      domain.Channel(m.Channel),
		Subject:      m.Subject,
		Body:         m.Body,
		Placeholders: placeholders,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}
