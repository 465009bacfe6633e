package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/serenease/notify/appointments/domain"
	"gorm.io/gorm"
)

type appointmentModel struct {
	ID        string `gorm:"primaryKey"`
	ClientID  string `gorm:"index:idx_appointments_client;not null"`
	Service   string
	StartAt   time.Time `gorm:"index:idx_appointments_start;not null"`
	EndAt     time.Time `gorm:"not null"`
	Status    string    `gorm:"index:idx_appointments_status;default:'booked'"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (appointmentModel) TableName() string {
	return "appointments"
}

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func (r *AppointmentGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&appointmentModel{})
}

func (r *AppointmentGormRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = now
	}
	appt.UpdatedAt = now
	if appt.Status == "" {
		appt.Status = domain.AppointmentStatusBooked
	}

	return r.db.WithContext(ctx).Create(toAppointmentModel(appt)).Error
}

func (r *AppointmentGormRepository) Update(ctx context.Context, appt *domain.Appointment) error {
	appt.UpdatedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).Model(&appointmentModel{}).Where("id = ?", appt.ID).Updates(toAppointmentModel(appt))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentGormRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	var m appointmentModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, err
	}
	return fromAppointmentModel(m), nil
}

func (r *AppointmentGormRepository) ListUpcomingByClient(ctx context.Context, clientID string, after time.Time) ([]*domain.Appointment, error) {
	var models []appointmentModel
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND start_at > ? AND status = ?", clientID, after, string(domain.AppointmentStatusBooked)).
		Order("start_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromAppointmentModels(models), nil
}

func (r *AppointmentGormRepository) ListUpcoming(ctx context.Context, after time.Time) ([]*domain.Appointment, error) {
	var models []appointmentModel
	err := r.db.WithContext(ctx).
		Where("start_at > ? AND status = ?", after, string(domain.AppointmentStatusBooked)).
		Order("start_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromAppointmentModels(models), nil
}

func toAppointmentModel(a *domain.Appointment) *appointmentModel {
	return &appointmentModel{
		ID:        a.ID,
		ClientID:  a.ClientID,
		Service:   a.Service,
		StartAt:   a.StartAt,
		EndAt:     a.EndAt,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func fromAppointmentModel(m appointmentModel) *domain.Appointment {
	return &domain.Appointment{
		ID:        m.ID,
		ClientID:  m.ClientID,
		Service:   m.Service,
		StartAt:   m.StartAt,
		EndAt:     m.EndAt,
		Status:    domain.AppointmentStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromAppointmentModels(models []appointmentModel) []*domain.Appointment {
	appts := make([]*domain.Appointment, 0, len(models))
	for _, m := range models {
		appts = append(appts, fromAppointmentModel(m))
	}
	return appts
}
