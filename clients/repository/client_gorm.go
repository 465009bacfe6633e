package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/serenease/notify/clients/domain"
	"gorm.io/gorm"
)

// --- Persistence Model ---

type clientModel struct {
	ID          string `gorm:"primaryKey"`
	DisplayName string `gorm:"index:idx_clients_display_name;not null"`
	Email       string `gorm:"index:idx_clients_email"`
	Phone       string `gorm:"index:idx_clients_phone"`
	BirthMonth  int    `gorm:"index:idx_clients_birth_month;default:0"`
	LastVisit   *time.Time
	Active      bool      `gorm:"default:true"`
	Tags        string    `gorm:"type:text;default:'[]'"` // JSON
	Notes       string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (clientModel) TableName() string {
	return "clients"
}

// --- Repository Implementation ---

type ClientGormRepository struct {
	db *gorm.DB
}

func NewClientGormRepository(db *gorm.DB) *ClientGormRepository {
	return &ClientGormRepository{db: db}
}

func (r *ClientGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&clientModel{})
}

func (r *ClientGormRepository) Create(ctx context.Context, client *domain.Client) error {
	if client.ID == "" {
		client.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	client.UpdatedAt = now

	model, err := toClientModel(client)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Create(&model)
	if result.Error != nil {
		if strings.Contains(result.Error.Error(), "UNIQUE constraint failed") || strings.Contains(result.Error.Error(), "duplicate key value") {
			return domain.ErrDuplicateClient
		}
		return result.Error
	}
	return nil
}

func (r *ClientGormRepository) Update(ctx context.Context, client *domain.Client) error {
	client.UpdatedAt = time.Now().UTC()

	model, err := toClientModel(client)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&clientModel{}).Where("id = ?", client.ID).Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientGormRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&clientModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientGormRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	var m clientModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	return fromClientModel(m)
}

func (r *ClientGormRepository) ListActive(ctx context.Context) ([]*domain.Client, error) {
	var models []clientModel
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("display_name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return fromClientModels(models)
}

func (r *ClientGormRepository) List(ctx context.Context) ([]*domain.Client, error) {
	var models []clientModel
	if err := r.db.WithContext(ctx).Order("display_name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return fromClientModels(models)
}

// --- Mapping ---

func toClientModel(c *domain.Client) (clientModel, error) {
	tags, err := json.Marshal(c.Tags)
	if err != nil {
		return clientModel{}, err
	}

	return clientModel{
		ID:          c.ID,
		DisplayName: c.DisplayName,
		Email:       c.Email,
		Phone:       c.Phone,
		BirthMonth:  c.BirthMonth,
		LastVisit:   c.LastVisit,
		Active:      c.Active,
		Tags:        string(tags),
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}, nil
}

func fromClientModel(m clientModel) (*domain.Client, error) {
	var tags []string
	if m.Tags != "" {
		if err := json.Unmarshal([]byte(m.Tags), &tags); err != nil {
			return nil, err
		}
	}

	return &domain.Client{
		ID:          m.ID,
		DisplayName: m.DisplayName,
		Email:       m.Email,
		Phone:       m.Phone,
		BirthMonth:  m.BirthMonth,
		LastVisit:   m.LastVisit,
		Active:      m.Active,
		Tags:        tags,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

func fromClientModels(models []clientModel) ([]*domain.Client, error) {
	clients := make([]*domain.Client, 0, len(models))
	for _, m := range models {
		c, err := fromClientModel(m)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, nil
}
